package engine

import (
	"swaplens/internal/model"

	"github.com/ethereum/go-ethereum/common"
)

// maxCandidateChain bounds candidate sequence length.
const maxCandidateChain = 8

type scoredCandidate struct {
	seq         []poolHop
	intentIndex int
	score       int
}

// buildCandidates enumerates every chained pool subsequence paired with every
// intent, for diagnostic inspection. Hops chain when one hop's output token
// is the next hop's input token; every prefix of a chain is its own
// candidate.
func buildCandidates(hops []poolHop, intents []model.SwapIntent) []scoredCandidate {
	var sequences [][]poolHop
	for i := range hops {
		chain := []poolHop{hops[i]}
		for j := i + 1; j < len(hops) && len(chain) < maxCandidateChain; j++ {
			if chain[len(chain)-1].tokenOut != hops[j].tokenIn {
				break
			}
			chain = append(chain, hops[j])
		}
		for length := 1; length <= len(chain); length++ {
			sequences = append(sequences, chain[:length:length])
		}
	}

	var out []scoredCandidate
	for _, seq := range sequences {
		if len(intents) == 0 {
			out = append(out, scoredCandidate{seq: seq, intentIndex: -1})
			continue
		}
		for i, intent := range intents {
			out = append(out, scoredCandidate{
				seq:         seq,
				intentIndex: i,
				score:       scoreSequence(seq, intent),
			})
		}
	}
	return out
}

// scoreSequence ranks a pool subsequence against an intent: full path match
// beats reversed match beats matching endpoints, with a penalty for hop-count
// mismatch.
func scoreSequence(seq []poolHop, intent model.SwapIntent) int {
	tokens := make([]common.Address, 0, len(seq)+1)
	tokens = append(tokens, seq[0].tokenIn)
	for _, hop := range seq {
		tokens = append(tokens, hop.tokenOut)
	}

	score := 0
	if tokens[0] == intent.TokenIn() {
		score += 10
	}
	if tokens[len(tokens)-1] == intent.TokenOut() {
		score += 10
	}

	intentTokens := intent.PathTokens()
	if len(intentTokens) >= 2 {
		if equalTokens(tokens, intentTokens) {
			score += 100
		} else if equalTokens(tokens, reverseTokens(intentTokens)) {
			score += 80
		}
		if len(seq) == len(intentTokens)-1 {
			score += 15
		} else {
			score -= 5
		}
	}
	return score
}

func equalTokens(a, b []common.Address) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func reverseTokens(tokens []common.Address) []common.Address {
	out := make([]common.Address, len(tokens))
	for i, token := range tokens {
		out[len(tokens)-1-i] = token
	}
	return out
}
