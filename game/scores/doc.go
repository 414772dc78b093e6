// Package scores hands finished games to the score collaborator.
//
// A Submission is built from an engine.Result when a game ends. Submitters
// receive it: Leaderboard keeps the best scores in memory, HTTPSubmitter
// posts them to an external persistence endpoint and Multi fans out to
// several submitters. Submission failures are reported to the caller and
// never retried.
package scores
