// Command cli is the interactive LoanDesk terminal client. It works against a
// local store in the configured data directory.
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/loandesk/internal/buildinfo"
	"github.com/dmitrijs2005/loandesk/internal/client/cli"
	"github.com/dmitrijs2005/loandesk/internal/client/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	app, err := cli.NewApp(ctx, config.LoadConfig())
	if err != nil {
		log.Printf("cli: %v", err)
		os.Exit(1)
	}

	app.Run(ctx)
}
