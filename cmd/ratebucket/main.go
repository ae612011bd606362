// Ratebucket exercises token-bucket rate limiters from the command line.
//
// Usage:
//
//	# Print the accept pattern of a 3-per-10 bucket called once per time unit
//	ratebucket simulate --kind int --max-tokens 3 --interval 10 --start 10000 --count 25
//
//	# Hammer the lock-free bucket with 64 goroutines at one timestamp
//	ratebucket stress --goroutines 64 --max-tokens 16
//
//	# Print a line only when the "stdout" bucket admits it
//	ratebucket limit --max-tokens 2 --interval 500ms
//
//	# Serve buckets from a YAML file and expose Prometheus metrics
//	ratebucket limit --config buckets.yaml --bucket api --metrics-addr :9090
package main

func main() {
	Execute()
}
