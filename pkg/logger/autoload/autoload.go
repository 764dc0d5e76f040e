// Package autoload configures the global logger from the environment
// on import.
//
//	import _ "github.com/tanpawarit/agentic-dialogue/pkg/logger/autoload"
package autoload

import (
	configx "github.com/tanpawarit/agentic-dialogue/pkg/config"
	logx "github.com/tanpawarit/agentic-dialogue/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("log"))
}
