package main

import "github.com/talx-hub/coinledger/internal/service"

func main() {
	service.RunServer()
}
