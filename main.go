package main

import "github.com/RakhaaNZ/CompVerse-app/cmd"

func main() {
	cmd.Run()
}
