package main

import (
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/cmd/linkedin-scraper/commands"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/components/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
