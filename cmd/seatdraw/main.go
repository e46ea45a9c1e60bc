package main

import "go.seatdraw.dev/core/cmd/seatdraw/seatdrawcmd"

func main() { seatdrawcmd.Execute() }
