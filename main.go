package main

import (
	"context"

	"github.com/shandysiswandi/gotp/internal/app"
)

// @title           gotp API
// @version         1.0
// @description     gotp is an offline TOTP authenticator served on the local machine.
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://127.0.0.1:8080
func main() {
	application := app.New()    // Initialize the application
	wait := application.Start() // Start the application and wait for the termination signal
	<-wait                      // Wait for the application to receive a termination signal
	ctx, cancel := context.WithTimeout(context.Background(), application.ShutdownTimeout())
	defer cancel()
	application.Stop(ctx) // Stop the application gracefully
}
