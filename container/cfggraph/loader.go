package cfggraph

import (
	"encoding/json"
	"fmt"

	"github.com/peterbourgon/mergemap"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/flexsw/flexsw/container/counter"
	"github.com/flexsw/flexsw/container/meter"
	"github.com/flexsw/flexsw/container/register"
	"github.com/flexsw/flexsw/container/table"
	"github.com/flexsw/flexsw/container/vset"
	"github.com/flexsw/flexsw/core/swerr"
)

// LoadOptions parameterize graph building.
type LoadOptions struct {
	// LookupFactory builds table lookup structures; nil selects the default.
	LookupFactory table.LookupFactory
	// RequiredFields must all be defined in the input config.
	RequiredFields []FieldRef
	// ForceArith fields get arithmetic enabled when present.
	ForceArith []FieldRef
	// ForceArithHeaders get arithmetic enabled on all their fields.
	ForceArithHeaders []string
	// DefaultOptions are target config options overridden by the input's config_options.
	DefaultOptions map[string]interface{}
}

type configJSON struct {
	HeaderTypes []struct {
		Name   string            `json:"name"`
		Fields [][]json.RawMessage `json:"fields"`
	} `json:"header_types"`
	Headers []struct {
		Name       string `json:"name"`
		HeaderType string `json:"header_type"`
		Metadata   bool   `json:"metadata"`
	} `json:"headers"`
	Parsers   []struct{ Name string } `json:"parsers"`
	Deparsers []struct{ Name string } `json:"deparsers"`
	Actions   []struct {
		Name string `json:"name"`
	} `json:"actions"`
	Pipelines []struct {
		Name      string `json:"name"`
		InitTable string `json:"init_table"`
		Tables    []struct {
			Name string `json:"name"`
			Type string `json:"type"`
			Key  []struct {
				MatchType string `json:"match_type"`
				Header    string `json:"header"`
				Field     string `json:"field"`
			} `json:"key"`
			Actions        []string           `json:"actions"`
			MaxSize        int                `json:"max_size"`
			WithCounters   bool               `json:"with_counters"`
			SupportTimeout bool               `json:"support_timeout"`
			DirectMeters   *string            `json:"direct_meters"`
			ActionProfile  *string            `json:"action_profile"`
			NextTables     map[string]*string `json:"next_tables"`
			BaseDefaultNext *string           `json:"base_default_next"`
			DefaultEntry   *struct {
				ActionName string   `json:"action_name"`
				ActionData []string `json:"action_data"`
			} `json:"default_entry"`
		} `json:"tables"`
		Conditionals []struct {
			Name       string          `json:"name"`
			Expression json.RawMessage `json:"expression"`
			TrueNext   *string         `json:"true_next"`
			FalseNext  *string         `json:"false_next"`
		} `json:"conditionals"`
	} `json:"pipelines"`
	ActionProfiles []struct {
		Name         string   `json:"name"`
		WithSelector bool     `json:"with_selector"`
		Actions      []string `json:"actions"`
		MaxSize      int      `json:"max_size"`
	} `json:"action_profiles"`
	RegisterArrays []struct {
		Name     string `json:"name"`
		Size     int    `json:"size"`
		Bitwidth int    `json:"bitwidth"`
	} `json:"register_arrays"`
	MeterArrays []struct {
		Name      string `json:"name"`
		Size      int    `json:"size"`
		Type      string `json:"type"`
		RateCount int    `json:"rate_count"`
	} `json:"meter_arrays"`
	CounterArrays []struct {
		Name string `json:"name"`
		Size int    `json:"size"`
	} `json:"counter_arrays"`
	ParseVsets []struct {
		Name                string `json:"name"`
		CompressedBitwidth  int    `json:"compressed_bitwidth"`
	} `json:"parse_vsets"`
	LearnLists []struct {
		ID       int        `json:"id"`
		Name     string     `json:"name"`
		Elements []FieldRef `json:"elements"`
	} `json:"learn_lists"`
	Calculations []struct {
		Name string `json:"name"`
		Algo string `json:"algo"`
	} `json:"calculations"`
	ExternInstances []struct {
		Name            string            `json:"name"`
		Type            string            `json:"type"`
		AttributeValues map[string]string `json:"attribute_values"`
	} `json:"extern_instances"`
	ConfigOptions map[string]interface{} `json:"config_options"`
}

// Load builds a Graph from a JSON configuration blob.
func Load(blob []byte, opts LoadOptions) (*Graph, error) {
	if len(blob) == 0 {
		return nil, swerr.New(swerr.ConfigParseError, "empty config")
	}

	result, e := gojsonschema.Validate(gojsonschema.NewStringLoader(configSchema), gojsonschema.NewBytesLoader(blob))
	if e != nil {
		return nil, swerr.New(swerr.ConfigParseError, "%v", e)
	}
	if !result.Valid() {
		var errs error
		for _, desc := range result.Errors() {
			errs = multierr.Append(errs, fmt.Errorf("%s", desc))
		}
		return nil, swerr.New(swerr.ConfigParseError, "schema: %v", errs)
	}

	var cfg configJSON
	if e := json.Unmarshal(blob, &cfg); e != nil {
		return nil, swerr.New(swerr.ConfigParseError, "%v", e)
	}

	g := newGraph()
	g.raw = append([]byte(nil), blob...)

	if e := g.build(&cfg, opts); e != nil {
		return nil, e
	}

	for _, rf := range opts.RequiredFields {
		if !g.FieldExists(rf.Header, rf.Field) {
			return nil, swerr.New(swerr.RequiredFieldMissing, "required field %s.%s absent", rf.Header, rf.Field)
		}
	}
	for _, rf := range opts.ForceArith {
		g.ForceArithField(rf.Header, rf.Field)
	}
	for _, h := range opts.ForceArithHeaders {
		g.ForceArithHeader(h)
	}

	if e := g.Validate(); e != nil {
		return nil, swerr.New(swerr.ConfigParseError, "%v", e)
	}

	logger.Info("config loaded",
		zap.Int("pipelines", len(g.pipelines)),
		zap.Int("tables", len(g.Tables)),
	)
	return g, nil
}

func (g *Graph) build(cfg *configJSON, opts LoadOptions) error {
	var errs error

	headerFields := map[string]map[string]int{}
	for _, ht := range cfg.HeaderTypes {
		fields := map[string]int{}
		for _, f := range ht.Fields {
			var name string
			var width int
			if len(f) < 2 || json.Unmarshal(f[0], &name) != nil || json.Unmarshal(f[1], &width) != nil {
				errs = multierr.Append(errs, fmt.Errorf("header type %s has a malformed field", ht.Name))
				continue
			}
			fields[name] = width
		}
		headerFields[ht.Name] = fields
	}
	for _, h := range cfg.Headers {
		fields, ok := headerFields[h.HeaderType]
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("header %s references missing header type %s", h.Name, h.HeaderType))
			continue
		}
		g.headers[h.Name] = fields
	}

	for _, p := range cfg.Parsers {
		g.parsers[p.Name] = &Parser{Name: p.Name}
	}
	for _, d := range cfg.Deparsers {
		g.deparsers[d.Name] = &Deparser{Name: d.Name}
	}

	actions := map[string]struct{}{}
	for _, a := range cfg.Actions {
		actions[a.Name] = struct{}{}
	}

	for _, ap := range cfg.ActionProfiles {
		for _, a := range ap.Actions {
			if _, ok := actions[a]; !ok {
				errs = multierr.Append(errs, fmt.Errorf("action profile %s references missing action %s", ap.Name, a))
			}
		}
		g.Profiles[ap.Name] = table.NewProfile(ap.Name, ap.WithSelector, ap.Actions)
	}

	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	for _, pj := range cfg.Pipelines {
		if _, ok := g.pipelines[pj.Name]; ok {
			errs = multierr.Append(errs, fmt.Errorf("duplicate pipeline %s", pj.Name))
			continue
		}
		p := &Pipeline{Name: pj.Name, initNode: pj.InitTable, nodes: map[string]Node{}}
		g.pipelines[pj.Name] = p

		for _, tj := range pj.Tables {
			if _, ok := g.nodes[tj.Name]; ok {
				errs = multierr.Append(errs, fmt.Errorf("duplicate node %s", tj.Name))
				continue
			}
			tblType := table.Simple
			switch tj.Type {
			case "", "simple":
			case "indirect":
				tblType = table.Indirect
			case "indirect_ws":
				tblType = table.IndirectWS
			}
			var kinds []table.MatchKind
			for _, k := range tj.Key {
				kind, ok := table.ParseMatchKind(k.MatchType)
				if !ok {
					errs = multierr.Append(errs, fmt.Errorf("table %s has unknown match type %s", tj.Name, k.MatchType))
					continue
				}
				kinds = append(kinds, kind)
			}
			for _, a := range tj.Actions {
				if _, ok := actions[a]; !ok {
					errs = multierr.Append(errs, fmt.Errorf("table %s references missing action %s", tj.Name, a))
				}
			}
			tcfg := table.Config{
				Name:         tj.Name,
				Type:         tblType,
				KeyKinds:     kinds,
				Actions:      tj.Actions,
				MaxSize:      tj.MaxSize,
				WithCounters: tj.WithCounters,
				WithTimeout:  tj.SupportTimeout,
			}
			if tj.DirectMeters != nil {
				tcfg.MeterRateCount = 2
			}
			if tblType != table.Simple {
				name := deref(tj.ActionProfile)
				prof, ok := g.Profiles[name]
				if !ok {
					errs = multierr.Append(errs, fmt.Errorf("table %s references missing action profile %s", tj.Name, name))
				}
				tcfg.Profile = prof
			}
			tbl := table.New(tcfg, opts.LookupFactory)
			if tj.DefaultEntry != nil {
				tbl.SetInitialDefault(tj.DefaultEntry.ActionName, table.ActionData(tj.DefaultEntry.ActionData))
			}

			next := map[string]string{}
			for label, target := range tj.NextTables {
				next[label] = deref(target)
			}
			node := &TableNode{name: tj.Name, Table: tbl, Next: next, BaseDefaultNext: deref(tj.BaseDefaultNext)}
			p.nodes[tj.Name] = node
			g.nodes[tj.Name] = node
			g.Tables[tj.Name] = tbl
		}

		for _, cj := range pj.Conditionals {
			if _, ok := g.nodes[cj.Name]; ok {
				errs = multierr.Append(errs, fmt.Errorf("duplicate node %s", cj.Name))
				continue
			}
			node := &Conditional{
				name:       cj.Name,
				Expression: string(cj.Expression),
				TrueNext:   deref(cj.TrueNext),
				FalseNext:  deref(cj.FalseNext),
			}
			p.nodes[cj.Name] = node
			g.nodes[cj.Name] = node
		}
	}

	for _, rj := range cfg.RegisterArrays {
		g.Registers[rj.Name] = register.New(rj.Name, rj.Size, rj.Bitwidth)
	}
	for _, mj := range cfg.MeterArrays {
		unit := meter.Packets
		if mj.Type == "bytes" {
			unit = meter.Bytes
		}
		rateCount := mj.RateCount
		if rateCount == 0 {
			rateCount = 2
		}
		g.Meters[mj.Name] = meter.New(mj.Name, mj.Size, unit, rateCount)
	}
	for _, cj := range cfg.CounterArrays {
		g.Counters[cj.Name] = counter.New(cj.Name, cj.Size)
	}
	for _, vj := range cfg.ParseVsets {
		bw := vj.CompressedBitwidth
		if bw == 0 {
			bw = 64
		}
		g.VSets[vj.Name] = vset.New(vj.Name, bw)
	}
	for _, lj := range cfg.LearnLists {
		g.Learns[lj.ID] = &FieldList{ID: lj.ID, Name: lj.Name, Elements: lj.Elements}
	}
	for _, cj := range cfg.Calculations {
		g.CRC.Register(cj.Name, cj.Algo)
	}
	for _, ej := range cfg.ExternInstances {
		g.Externs[ej.Name] = &Extern{Name: ej.Name, Type: ej.Type, Attributes: ej.AttributeValues}
	}

	options := map[string]interface{}{}
	if opts.DefaultOptions != nil {
		options = mergemap.Merge(options, opts.DefaultOptions)
	}
	if cfg.ConfigOptions != nil {
		options = mergemap.Merge(options, cfg.ConfigOptions)
	}
	for k, v := range options {
		g.options[k] = fmt.Sprint(v)
	}

	if errs != nil {
		return swerr.New(swerr.ConfigParseError, "%v", errs)
	}
	return nil
}
