// Package cryptotax computes realized capital gains and ordinary income from
// a normalized stream of cryptocurrency transactions.
//
// The core functionalities include:
//   - Lot Tracking: every acquisition (buy, deposit, staking reward,
//     airdrop) creates a Lot carrying its quantity, cost basis and
//     acquisition instant.
//   - Lot Selection: disposals consume lots in the order decided by the run
//     Method (FIFO, LIFO or HIFO), splitting lots when needed.
//   - Gain Realization: each consumed slice of a lot yields a GainLoss record,
//     classified short or long term by its holding period.
//   - Income Recognition: rewards and airdrops are income at fair market
//     value, which also becomes the cost basis of the received lot.
//   - Diagnostics: malformed transactions and oversold assets are reported,
//     never silently dropped.
//
// A Ledger is configured once and run on a complete transaction stream. Runs
// are deterministic: the same input and configuration always produce the
// same Result, whether inventories are replayed sequentially or in parallel.
package cryptotax
