package hcltopology

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block of a grid file. Anything other
// than step blocks is rejected by the decoder.
type fileRoot struct {
	Steps []*stepBlock `hcl:"step,block"`
}

type stepBlock struct {
	Kind      string          `hcl:"kind,label"`
	Name      string          `hcl:"name,label"`
	DependsOn []string        `hcl:"depends_on,optional"`
	Arguments *argumentsBlock `hcl:"arguments,block"`
}

type argumentsBlock struct {
	Body hcl.Body `hcl:",remain"`
}
