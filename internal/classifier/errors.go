package classifier

import "errors"

var (
	// ErrSchemaMismatch is returned when the model blob and the schema
	// disagree on the number of features.
	ErrSchemaMismatch = errors.New("model weights do not match feature schema")

	// ErrEmptySchema is returned for a model without features.
	ErrEmptySchema = errors.New("feature schema is empty")

	// ErrUnsupportedModel is returned for a model blob of an unknown type.
	ErrUnsupportedModel = errors.New("unsupported model type")
)
