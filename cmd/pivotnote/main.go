package main

import (
	"pivotnote/cmd/cmd"
	"pivotnote/internal/logger"
)

func main() {
	logger.Init()
	cmd.Execute()
}
