// Package model provides the fitted-state machinery shared by spectro
// transforms.
package model

// ParameterGetter is the interface for transforms that expose their
// hyperparameters.
type ParameterGetter interface {
	// GetParams returns the transform's hyperparameters.
	GetParams() map[string]interface{}
}
