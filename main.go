package main

import "github.com/AlexanderBlank/BART/cmd"

func main() {
	cmd.Execute()
}
