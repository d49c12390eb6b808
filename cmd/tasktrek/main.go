// Command tasktrek serves the TaskTrek web app and offers a few operator
// subcommands against the same configuration.
package main

import (
	"os"

	"github.com/couchcryptid/task-trek/cmd/tasktrek/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
