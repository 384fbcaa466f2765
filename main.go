// main.go - Entry point for the marketplace backend

package main

import "go-market-backend/cmd"

func main() {
	cmd.Execute()
}
