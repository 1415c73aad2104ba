// Package mapping holds the metadata that binds Go struct fields to XML
// paths.
//
// Bindings come from a YAML file or from `oxm` struct tags:
//
//	version: "1"
//	namespaces:
//	  ex: urn:example
//	classes:
//	  - type: model.Document
//	    root: ex:doc
//	    mappings:
//	      - attribute: Photo
//	        xpath: ex:photo
//	        mime_type: image/png
//	      - attribute: Scan
//	        xpath: ex:scan
//	        swaref: true
//
// Build validates a BindingFile against the registered Go types and resolves
// it into a Project of class descriptors. Each Descriptor carries the
// accessor, converter and binary flags of one attribute and is shared,
// read-only, by every marshal and unmarshal call.
package mapping
