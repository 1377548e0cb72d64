// Package memprt is an in-process rule engine implementing prt.Engine.
//
// Rule packages are HCL manifests. Each rule_file block declares the rules
// and attributes of one compiled rule file, the material and report maps
// attached to generated faces and the number of UV sets to emit:
//
//	rule_file "bin/lot.cgb" {
//	  rule "Lot" {
//	    start = true
//	  }
//	  attr "height" {
//	    type    = number
//	    default = 10
//	  }
//	  material = { colormap = "brick.png" }
//	  report   = { kind = "lot" }
//	  uv_sets  = 1
//	}
//
// Generation passes the initial shape geometry through: every input face
// becomes one derived shape and one face range of the generated model.
package memprt
