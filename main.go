package main

import "github.com/skTanky/Velocity-CTD/cmd/gate"

func main() {
	gate.Execute()
}
