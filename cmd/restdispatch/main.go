// Command restdispatch runs the REST mock dispatch engine.
package main

import (
	"github.com/svcmock/restdispatch/pkg/cli"
)

func main() {
	cli.Execute()
}
