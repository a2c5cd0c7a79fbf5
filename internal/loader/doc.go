// Package loader reads settings documents from disk.
//
// YAML files (.yaml, .yml) are decoded through yaml.Node so variables,
// sections and fields keep the order they were written in. HCL files (.hcl)
// declare one block per variable:
//
//	variable "v1" {
//	  input {
//	    min          = 0
//	    max          = 1
//	    number_steps = 2
//	  }
//	}
//
//	variable "v2" {
//	  output {
//	    function = "v1*2"
//	  }
//	}
//
// JSON files (.json) use the HCL JSON syntax for the same schema.
package loader
