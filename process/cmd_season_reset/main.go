package main

import "stonktip/process/sanitize"

func main() {
	sanitize.Run()
}
