package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/saydalia/saydalia/app/controllers"
	"github.com/saydalia/saydalia/app/routes"
	"github.com/saydalia/saydalia/internal/server"
	"github.com/saydalia/saydalia/pkg/router"
)

// saydalia serve — start the HTTP and gRPC servers.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// saydalia route:list — print all registered routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Handlers are registered but never invoked, so controllers
		// without services are fine here.
		r := router.New()
		routes.Register(r, routes.API{
			Auth:          controllers.NewAuthController(nil),
			Users:         controllers.NewUserController(nil),
			Pharmacies:    controllers.NewPharmacyController(nil),
			Orders:        controllers.NewOrderController(nil),
			Notifications: controllers.NewNotificationController(nil, nil),
			Dashboard:     controllers.NewDashboardController(nil),
			Health:        controllers.NewHealthController(),
		})

		infos := r.Routes()
		if len(infos) == 0 {
			fmt.Println("No named routes registered.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
