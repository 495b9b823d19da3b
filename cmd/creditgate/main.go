// Package main is the entry point for CreditGate.
package main

func main() {
	Execute()
}
