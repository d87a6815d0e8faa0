package main

import (
	"os"

	"horse.fit/easydict/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
