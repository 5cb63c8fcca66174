// Package hcltopology reads grid files written in HCL and turns them into a
// topologystore.Source.
//
// A grid file declares steps:
//
//	step "print" "hello" {
//	  arguments {
//	    message = "Hello"
//	  }
//	}
//
//	step "print" "world" {
//	  depends_on = ["step.print.hello"]
//	}
//
// The first label is the step's kind, the second its name; together they
// form the node id "step.<kind>.<name>". depends_on entries name parents,
// either by full id or as "<kind>.<name>". Argument expressions are
// evaluated without variables, so only literal values are accepted.
package hcltopology
