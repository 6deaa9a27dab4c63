package wire

import (
	"langlang/internal/pipeline"
)

// Config writes c as [source_language, type_system, purity, optimization].
func (e *Encoder) Config(c pipeline.Config) {
	e.Array(4)
	e.String(c.SourceLanguage)
	e.Uint(uint64(c.TypeSystem))
	e.Uint(uint64(c.Purity))
	e.Uint(uint64(c.Optimization))
}

func (d *Decoder) Config() pipeline.Config {
	if !d.Expect("config", d.Array(), 4) {
		return pipeline.Config{}
	}
	c := pipeline.Config{
		SourceLanguage: d.String(),
		TypeSystem:     pipeline.TypeSystem(d.Uint8()),
		Purity:         pipeline.PurityLevel(d.Uint8()),
		Optimization:   pipeline.OptimizationLevel(d.Uint8()),
	}
	if d.Failed() {
		return pipeline.Config{}
	}
	if err := c.Validate(); err != nil {
		d.Fail(&FormatError{Reason: ReasonUnsupportedVariant, Schema: "pipeline.Config", Detail: "enum out of range", Err: err})
	}
	return c
}
