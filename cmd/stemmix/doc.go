// Command stemmix runs the stem-mixing HTTP service and its companion tools.
//
//	stemmix serve                 run the HTTP service and scratch sweeper
//	stemmix mix --out FILE URL... mix stems locally into an MP3
//	stemmix status                preflight checks
//	stemmix scratch list|clean    inspect and sweep leftover scratch files
//	stemmix config init|validate  manage the configuration file
package main
