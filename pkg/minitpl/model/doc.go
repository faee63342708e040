// Package model defines the data model that templates are rendered against.
//
// A Value is an explicit tagged variant: Null, Bool, Number, String, List or
// Record. Go values are converted once, at the render boundary, by From;
// after that the renderer never touches reflection. Records keep member
// order and resolve names case-insensitively.
//
// Scope is the chain of loop-variable bindings active while a template
// body is rendered.
//
// LoadFile, Read and Decode build models from JSON or YAML documents.
package model
