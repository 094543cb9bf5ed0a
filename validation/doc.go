// Package validation checks configuration structs before a pipeline is built.
//
// Struct tags cover per-field rules through go-playground/validator; the
// fluent Validator covers cross-field rules. Both report an INVALID_CONFIG
// AppError whose details list every failing field by its mapstructure key.
//
//	type Config struct {
//	    BatchSize int `mapstructure:"batch_size" validate:"min=1"`
//	}
//	if err := validation.Validate(cfg); err != nil { ... }
//
//	v := validation.New()
//	v.Pair("new_height", cfg.NewHeight, "new_width", cfg.NewWidth)
//	if err := v.Validate(); err != nil { ... }
package validation
