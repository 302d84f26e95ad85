package main

import "stockroom/internal/app"

// @title           Stockroom API
// @version         1.0
// @description     Inventory management for small shops: passwordless login, stock tracking, reports and alerts.

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

func main() {
	app.Run()
}
