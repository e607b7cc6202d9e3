/*
	Muster is focused on telling a story about a fleet: take a big cache of
	independently checked-out repositories, run the same trial command in
	every one of them, and find out which of them still pass muster.

	The def package holds the value types the rest of the system trades in.
	Everything here is plain data: a `Job` names a repository to try, a
	`RunResult` records how the trial went, and `Settings` is the one bag
	of knobs the CLI assembles before anything else starts moving.

	Nothing in this package does I/O, and nothing in this package is
	mutable after construction.  Components receive these values and react;
	they never reach back and reconfigure the run midway.  (If you find
	yourself wanting a setter here, the answer is to thread a new value
	through from the top instead.)
*/
package def
