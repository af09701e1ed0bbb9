package main

import "chefpress/cmd/handlers"

func main() {
	handlers.Execute()
}
