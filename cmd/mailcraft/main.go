// Package main is the entry point for mailcraft.
//
//	@title			mailcraft - Email Template Builder
//	@version		1.0
//	@description	Builds marketing email templates from a module forest and exports HTML with AMPscript country switches.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
package main

func main() {
	Execute()
}
