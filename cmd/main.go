package main

import (
	"log"

	"github.com/zhwltlr/ggaba-sub000/internal/app"
)

func main() {
	app, err := app.NewApp()
	if err != nil {
		log.Fatal(err)
	}

	app.Run()
}
