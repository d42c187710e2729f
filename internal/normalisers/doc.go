// Package normalisers extracts text from raw policy documents.
//
// Each sub-package handles one family of MIME types. Registry selects the
// highest priority normaliser for a document and canonical produces the
// text form every later stage works on.
package normalisers
