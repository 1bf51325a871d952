// Package verify implements the link safety verification pipeline.
//
// Architecture overview:
//
//   - Five independent checkers inspect a submitted URL: URLValidator
//     (structure), DNSChecker (resolution and address ranges), SSLChecker
//     (TLS handshake and certificate), PhishingDetector (typosquatting and
//     keyword heuristics), and ThreatChecker (external reputation feeds
//     plus local pattern fallbacks).
//   - Every checker returns a structured result, never an error: input
//     problems and infrastructure failures are captured as error/warning
//     strings inside the result so the pipeline always completes.
//   - Verifier dispatches the five checks concurrently, joins them,
//     folds the results into a weighted 0-100 risk score and one of five
//     risk bands, and builds the final Verdict with critical issues and
//     recommendations.
//   - Cache memoizes verdicts per exact URL string for a fixed TTL so
//     repeated verifications skip the network entirely.
//
// Heuristic lists and score weights live in Heuristics/ScoreWeights and
// are injected at construction, so tuning is configuration, not code.
package verify
