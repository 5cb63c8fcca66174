package app

import (
	"io"

	"github.com/specialistvlad/gridwalk/internal/handlers"
	"github.com/specialistvlad/gridwalk/modules/env"
	"github.com/specialistvlad/gridwalk/modules/fail"
	"github.com/specialistvlad/gridwalk/modules/print"
	"github.com/specialistvlad/gridwalk/modules/sleep"
)

// coreModules is the definitive list of all modules that are compiled into
// the gridwalk binary. Printed output goes to outW.
func coreModules(outW io.Writer) []handlers.Module {
	return []handlers.Module{
		&env.Module{},
		&fail.Module{},
		&print.Module{Out: outW},
		&sleep.Module{},
	}
}
