// Command wayfinder runs the workshop assistant bot.
package main

func main() {
	Execute()
}
