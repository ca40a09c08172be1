package sw

import (
	"crypto/md5"
	"io"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/flexsw/flexsw/container/cfggraph"
	"github.com/flexsw/flexsw/container/table"
	"github.com/flexsw/flexsw/core/swerr"
)

// resolveCacheSize bounds the per-context table resolution cache.
const resolveCacheSize = 256

// Context is a switch within the switch: it owns one live forwarding
// configuration plus the machinery to swap or incrementally edit it.
//
// requestMu serializes the control plane against the data plane: table
// operations and graph reads take the shared side, config swaps and edit
// primitives take the exclusive side.
type Context struct {
	sw *Switch
	id int

	requestMu sync.RWMutex
	live      *cfggraph.Graph
	staged    *cfggraph.Graph
	edit      *cfggraph.Graph
	ordered   atomic.Bool

	idToStaged map[string]string
	components *ComponentMap
	resolve    *lru.Cache
}

func newContext(s *Switch, id int) *Context {
	cache, _ := lru.New(resolveCacheSize)
	return &Context{
		sw:         s,
		id:         id,
		live:       cfggraph.NewEmpty(),
		idToStaged: map[string]string{},
		components: newComponentMap(),
		resolve:    cache,
	}
}

// ID returns the context id.
func (c *Context) ID() int { return c.id }

func (c *Context) swapOrdered() bool { return c.ordered.Load() }

// tableRef resolves a table in the live graph through the resolution cache.
// Caller must hold requestMu.
func (c *Context) tableRef(name string) (*table.Table, error) {
	if v, ok := c.resolve.Get(name); ok {
		return v.(*table.Table), nil
	}
	t, e := c.live.Table(name)
	if e != nil {
		return nil, e
	}
	c.resolve.Add(name, t)
	return t, nil
}

func (c *Context) sendSwapStatus(status SwapStatus) {
	t := c.sw.Transport()
	if t == nil {
		return
	}
	if e := t.Send(EncodeSwapStatus(c.sw.deviceID, c.id, status)); e != nil {
		logger.Warn("notification send failed",
			zap.Int("cxt", c.id),
			zap.Stringer("status", status),
			zap.Error(e),
		)
	}
}

// initObjects installs blob as the initial live configuration.
func (c *Context) initObjects(blob []byte) error {
	g, e := cfggraph.Load(blob, c.sw.loadOptions())
	if e != nil {
		return e
	}
	c.requestMu.Lock()
	defer c.requestMu.Unlock()
	c.live = g
	c.resolve.Purge()
	return nil
}

// LoadNewConfig parses blob into a staged configuration and orders a swap.
// The live graph is untouched on failure.
func (c *Context) LoadNewConfig(blob []byte) error {
	if !c.sw.enableSwap {
		return swerr.New(swerr.InvalidCommandError, "config swap disabled")
	}

	c.requestMu.Lock()
	if c.staged != nil {
		c.requestMu.Unlock()
		return swerr.New(swerr.OngoingSwap, "context %d already has a staged config", c.id)
	}
	g, e := cfggraph.Load(blob, c.sw.loadOptions())
	if e != nil {
		c.requestMu.Unlock()
		return e
	}
	c.staged = g
	c.ordered.Store(true)
	c.requestMu.Unlock()

	c.sendSwapStatus(NewConfigLoaded)
	c.sw.setConfigLoaded()
	logger.Info("new config staged", zap.Int("cxt", c.id))
	return nil
}

// SwapConfigs performs the pending swap of this context, under the
// process-wide packet-inflight barrier. All entry handles and object views
// obtained against the previous live graph are invalid afterwards.
func (c *Context) SwapConfigs() error {
	if !c.ordered.Load() {
		return swerr.New(swerr.NoOngoingSwap, "context %d has no staged config", c.id)
	}
	c.sendSwapStatus(SwapRequested)
	_, e := c.sw.doSwap([]*Context{c})
	return e
}

// swapLocked installs the staged graph as live. Caller holds the packet
// barrier; this method takes the context's exclusive lock for the pointer flip.
func (c *Context) swapLocked() {
	c.requestMu.Lock()
	defer c.requestMu.Unlock()
	if c.staged == nil {
		return
	}
	c.live = c.staged
	c.staged = nil
	c.ordered.Store(false)
	c.resolve.Purge()
}

// ResetState discards all entries, counters, meters, and registers of the
// live graph, keeping structure. A pending swap is cancelled and its staged
// graph discarded.
func (c *Context) ResetState() {
	c.requestMu.Lock()
	c.live.ResetState()
	cancelled := c.staged != nil
	c.staged = nil
	c.ordered.Store(false)
	c.requestMu.Unlock()

	if cancelled {
		c.sendSwapStatus(SwapCancelled)
	}
}

// Serialize writes the mutable state of the live configuration.
// Staged state is never serialized.
func (c *Context) Serialize(w io.Writer) error {
	c.requestMu.Lock()
	defer c.requestMu.Unlock()
	return c.live.SerializeState(w)
}

// Deserialize restores mutable state written by Serialize. The live
// configuration must be structurally equivalent to the one that produced
// the input.
func (c *Context) Deserialize(r io.Reader) error {
	c.requestMu.Lock()
	defer c.requestMu.Unlock()
	return c.live.DeserializeState(r)
}

// GetConfig returns the input bytes of the live configuration.
func (c *Context) GetConfig() []byte {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	return append([]byte(nil), c.live.Raw()...)
}

// GetConfigMD5 returns the digest of the live configuration's input bytes.
func (c *Context) GetConfigMD5() [md5.Size]byte {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	return c.live.MD5()
}

// ConfigOptions returns the target-specific options of the live configuration.
func (c *Context) ConfigOptions() map[string]string {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	return c.live.ConfigOptions()
}

// ErrorCodes returns the error code-to-name map.
func (c *Context) ErrorCodes() map[int]string {
	return swerr.Names()
}

// FieldExists reports whether a header field is defined in the live configuration.
func (c *Context) FieldExists(header, field string) bool {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	return c.live.FieldExists(header, field)
}

// GetPipeline returns a non-owning view of a pipeline in the live graph, or
// nil if absent. Views become invalid when a swap completes.
func (c *Context) GetPipeline(name string) *cfggraph.Pipeline {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	p, _ := c.live.Pipeline(name)
	return p
}

// GetParser returns a non-owning parser view, or nil.
func (c *Context) GetParser(name string) *cfggraph.Parser {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	return c.live.Parser(name)
}

// GetDeparser returns a non-owning deparser view, or nil.
func (c *Context) GetDeparser(name string) *cfggraph.Deparser {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	return c.live.Deparser(name)
}

// GetFieldList returns a non-owning learn list view, or nil.
func (c *Context) GetFieldList(id int) *cfggraph.FieldList {
	c.requestMu.RLock()
	defer c.requestMu.RUnlock()
	return c.live.FieldList(id)
}

// ExternAccess provides safe access to an extern instance: it holds the
// shared side of the context lock until released, so a swap cannot destroy
// the instance underneath the caller.
type ExternAccess struct {
	ext  *cfggraph.Extern
	c    *Context
	once sync.Once
}

// Get returns the extern instance.
func (a *ExternAccess) Get() *cfggraph.Extern { return a.ext }

// Close releases the lease. Idempotent; release happens on all exit paths
// when deferred at acquisition.
func (a *ExternAccess) Close() error {
	a.once.Do(a.c.requestMu.RUnlock)
	return nil
}

// ExternInstance acquires a scoped handle on an extern instance of the live
// graph. Concurrent handles are permitted; a swap is blocked while any
// handle is outstanding.
func (c *Context) ExternInstance(name string) (*ExternAccess, error) {
	c.requestMu.RLock()
	ext, e := c.live.ExternInstance(name)
	if e != nil {
		c.requestMu.RUnlock()
		return nil, e
	}
	return &ExternAccess{ext: ext, c: c}, nil
}
