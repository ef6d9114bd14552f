// Package forms registers the built-in form definitions with the core
// registry and loads additional definitions from YAML.
// Import this package to ensure the built-in forms are registered.
package forms

// Each form file uses init() to register its form.
