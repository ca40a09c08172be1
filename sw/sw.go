// Package sw implements the switch runtime core: a fleet of contexts, each
// holding one live forwarding configuration, with atomic full-config swap
// under a process-wide packet-inflight barrier and in-place incremental
// reconfiguration of the live graph.
package sw

import (
	"sync"

	"go.uber.org/zap"

	"github.com/flexsw/flexsw/container/cfggraph"
	"github.com/flexsw/flexsw/container/table"
	"github.com/flexsw/flexsw/core/logging"
	"github.com/flexsw/flexsw/core/swerr"
)

var logger = logging.New("sw")

// Switch fronts a fleet of contexts behind one control-plane surface.
//
// The packet-inflight barrier is a reader-writer lock dedicated to packet
// lifetime: NewPacket acquires the reader side for the lifetime of the
// packet, a config swap acquires the writer side. Go's sync.RWMutex blocks
// new readers once a writer waits, so a swap cannot be starved.
type Switch struct {
	contexts   []*Context
	enableSwap bool
	deviceID   uint64

	packetMu   sync.RWMutex
	components *ComponentMap

	mu                sync.Mutex
	requiredFields    []cfggraph.FieldRef
	forceArithFields  []cfggraph.FieldRef
	forceArithHeaders []string
	defaultOptions    map[string]interface{}
	lookupFactory     table.LookupFactory
	transport         Transport

	configMu     sync.Mutex
	configLoaded bool
	configCond   *sync.Cond

	// Target hooks. Set them before Init; they are optional.
	ReceiveFn     func(port int, data []byte) error
	StartFn       func()
	SwapNotifyFn  func() error
	ResetTargetFn func()
}

// New creates a switch with nbCxts contexts.
// Context ids 0..nbCxts-1 exist after construction; every context starts
// with an empty live configuration. enableSwap permits live config swaps.
func New(nbCxts int, enableSwap bool) *Switch {
	if nbCxts <= 0 {
		nbCxts = 1
	}
	s := &Switch{
		enableSwap:    enableSwap,
		components:    newComponentMap(),
		lookupFactory: table.DefaultLookupFactory{},
		transport:     NewEmitterTransport(),
	}
	s.configCond = sync.NewCond(&s.configMu)
	for i := 0; i < nbCxts; i++ {
		s.contexts = append(s.contexts, newContext(s, i))
	}
	return s
}

// NumContexts returns the number of contexts.
func (s *Switch) NumContexts() int { return len(s.contexts) }

// DeviceID returns the device id of this switch.
func (s *Switch) DeviceID() uint64 { return s.deviceID }

// Context returns a context by id.
func (s *Switch) Context(cxtID int) (*Context, error) {
	if cxtID < 0 || cxtID >= len(s.contexts) {
		return nil, swerr.New(swerr.ContextOutOfRange, "context %d, switch has %d", cxtID, len(s.contexts))
	}
	return s.contexts[cxtID], nil
}

// Transport returns the notification transport.
func (s *Switch) Transport() Transport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport
}

// SetLookupFactory replaces the lookup structure factory for future loads.
func (s *Switch) SetLookupFactory(factory table.LookupFactory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if factory != nil {
		s.lookupFactory = factory
	}
}

// SetDefaultConfigOptions sets target option defaults merged under every
// loaded configuration's config_options.
func (s *Switch) SetDefaultConfigOptions(options map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultOptions = options
}

// AddRequiredField requires a header field to be defined in every future load.
func (s *Switch) AddRequiredField(header, field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requiredFields = append(s.requiredFields, cfggraph.FieldRef{Header: header, Field: field})
}

// ForceArithField enables arithmetic on a field in every future load.
func (s *Switch) ForceArithField(header, field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forceArithFields = append(s.forceArithFields, cfggraph.FieldRef{Header: header, Field: field})
}

// ForceArithHeader enables arithmetic on all fields of a header in every future load.
func (s *Switch) ForceArithHeader(header string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forceArithHeaders = append(s.forceArithHeaders, header)
}

// AddComponent registers a switch-global component. First-wins per tag.
func (s *Switch) AddComponent(tag string, component any) bool {
	return s.components.Add(tag, component)
}

// Component retrieves a switch-global component, or nil.
func (s *Switch) Component(tag string) any {
	return s.components.Get(tag)
}

// AddContextComponent registers a component on one context.
func (s *Switch) AddContextComponent(cxtID int, tag string, component any) (bool, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return false, e
	}
	return c.components.Add(tag, component), nil
}

// ContextComponent retrieves a component of one context.
func (s *Switch) ContextComponent(cxtID int, tag string) (any, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return nil, e
	}
	return c.components.Get(tag), nil
}

func (s *Switch) loadOptions() cfggraph.LoadOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cfggraph.LoadOptions{
		LookupFactory:     s.lookupFactory,
		RequiredFields:    append([]cfggraph.FieldRef(nil), s.requiredFields...),
		ForceArith:        append([]cfggraph.FieldRef(nil), s.forceArithFields...),
		ForceArithHeaders: append([]string(nil), s.forceArithHeaders...),
		DefaultOptions:    s.defaultOptions,
	}
}

// Init loads blob as the initial live configuration of every context.
func (s *Switch) Init(blob []byte, deviceID uint64, transport Transport) error {
	s.mu.Lock()
	s.deviceID = deviceID
	if transport != nil {
		s.transport = transport
	}
	s.mu.Unlock()

	for _, c := range s.contexts {
		if e := c.initObjects(blob); e != nil {
			return e
		}
	}
	s.setConfigLoaded()
	logger.Info("switch initialized",
		zap.Uint64("deviceID", deviceID),
		zap.Int("contexts", len(s.contexts)),
	)
	return nil
}

func (s *Switch) setConfigLoaded() {
	s.configMu.Lock()
	s.configLoaded = true
	s.configMu.Unlock()
	s.configCond.Broadcast()
}

// ConfigLoaded reports whether a configuration has been installed.
func (s *Switch) ConfigLoaded() bool {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	return s.configLoaded
}

// StartAndReturn blocks until a configuration is loaded, then invokes the
// target's start hook. Call it once, after construction.
func (s *Switch) StartAndReturn() {
	s.configMu.Lock()
	for !s.configLoaded {
		s.configCond.Wait()
	}
	s.configMu.Unlock()
	if s.StartFn != nil {
		s.StartFn()
	}
}

// Receive hands a received frame to the target. The core does not interpret
// buffer contents.
func (s *Switch) Receive(port int, data []byte) error {
	if s.ReceiveFn == nil {
		return nil
	}
	return s.ReceiveFn(port, data)
}

// Packet represents one packet inflight within the switch. It holds the
// reader side of the packet-inflight barrier and a reference to the live
// graph it is processed against; both are released by Close.
type Packet struct {
	CxtID       int
	IngressPort int
	ID          uint64
	Data        []byte

	sw        *Switch
	cxt       *Context
	graph     *cfggraph.Graph
	closeOnce sync.Once
}

// NewPacket constructs a packet for a context, pinning the context's current
// live graph. The packet holds the shared side of both the inflight barrier
// and the context's request lock until Close: a full swap waits for the
// barrier, an incremental edit or trigger waits for the request lock, so a
// packet traverses one coherent graph from construction to release.
func (s *Switch) NewPacket(cxtID, ingressPort int, id uint64, data []byte) (*Packet, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return nil, e
	}
	s.packetMu.RLock()
	c.requestMu.RLock()
	return &Packet{
		CxtID:       cxtID,
		IngressPort: ingressPort,
		ID:          id,
		Data:        data,
		sw:          s,
		cxt:         c,
		graph:       c.live,
	}, nil
}

// Graph returns the configuration this packet is processed against.
// The reference stays valid until Close.
func (p *Packet) Graph() *cfggraph.Graph { return p.graph }

// Close releases the packet's hold on the inflight barrier. Idempotent.
func (p *Packet) Close() error {
	p.closeOnce.Do(func() {
		p.graph = nil
		p.cxt.requestMu.RUnlock()
		p.sw.packetMu.RUnlock()
	})
	return nil
}

// BlockUntilNoMorePackets prevents new packets from being constructed and
// blocks until every existing packet is closed, then allows traffic again.
func (s *Switch) BlockUntilNoMorePackets() {
	s.packetMu.Lock()
	s.packetMu.Unlock()
}

// SwapRequested reports whether a swap is pending on a context.
func (s *Switch) SwapRequested(cxtID int) (bool, error) {
	c, e := s.Context(cxtID)
	if e != nil {
		return false, e
	}
	return c.swapOrdered(), nil
}

// DoSwap performs the pending configuration swap of every context in
// PENDING state. Returns 1 if no context had a swap pending; mutates
// nothing in that case. While the swap runs, no packet is inflight anywhere
// in the switch.
func (s *Switch) DoSwap() (int, error) {
	return s.doSwap(s.contexts)
}

func (s *Switch) doSwap(candidates []*Context) (int, error) {
	var pending []*Context
	for _, c := range candidates {
		if c.swapOrdered() {
			pending = append(pending, c)
		}
	}
	if len(pending) == 0 {
		return 1, nil
	}

	s.packetMu.Lock()
	for _, c := range pending {
		c.swapLocked()
	}
	s.packetMu.Unlock()

	var err error
	if s.SwapNotifyFn != nil {
		if e := s.SwapNotifyFn(); e != nil {
			// The swap is committed regardless; the failure is surfaced, not rolled back.
			logger.Error("swap notify hook failed", zap.Error(e))
			err = swerr.New(swerr.SwapNotifyError, "%v", e)
		}
	}
	for _, c := range pending {
		c.sendSwapStatus(SwapCompleted)
	}
	logger.Info("swap completed", zap.Int("contexts", len(pending)))
	return 0, err
}

// ResetState resets the live state of every context and invokes the
// target's reset hook.
func (s *Switch) ResetState() {
	for _, c := range s.contexts {
		c.ResetState()
	}
	if s.ResetTargetFn != nil {
		s.ResetTargetFn()
	}
}
