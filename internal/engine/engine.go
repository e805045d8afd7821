package engine

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"swaplens/internal/dex"
	"swaplens/internal/model"
	"swaplens/internal/router"
)

// PoolMetadataResolver supplies the token pair behind a pool address.
type PoolMetadataResolver interface {
	PoolMetadata(ctx context.Context, pool common.Address) (model.PoolMeta, error)
}

// TokenMetadataResolver supplies ERC20 metadata for a token address.
type TokenMetadataResolver interface {
	TokenMetadata(ctx context.Context, token common.Address) (model.TokenMeta, error)
}

// Engine correlates decoded swap intents with observed pool swaps. It holds
// no mutable state of its own; per-decode caches live in a session local to
// each Decode call, so concurrent use needs no locking.
type Engine struct {
	calls  *router.CallDecoder
	events *dex.SwapLogDecoder
	pools  PoolMetadataResolver
	tokens TokenMetadataResolver
	logger *zap.Logger
}

// New builds an Engine over the given metadata resolvers.
func New(pools PoolMetadataResolver, tokens TokenMetadataResolver, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	calls, err := router.NewCallDecoder(logger)
	if err != nil {
		return nil, err
	}
	events, err := dex.NewSwapLogDecoder()
	if err != nil {
		return nil, err
	}
	return &Engine{
		calls:  calls,
		events: events,
		pools:  pools,
		tokens: tokens,
		logger: logger,
	}, nil
}

// Input is the already-fetched raw material for one decode.
type Input struct {
	CallData []byte
	Value    *big.Int
	From     common.Address
	Logs     []model.LogRecord
	// Diagnostic switches the output from one resolved swap to the full
	// candidate list.
	Diagnostic bool
}

// Output carries either the single authoritative result or, in diagnostic
// mode, every candidate pairing.
type Output struct {
	Resolved   *model.ResolvedSwap
	Candidates []model.CandidateMatch
}

// Decode reconstructs the overall swap of one transaction from its call data
// and receipt logs.
func (e *Engine) Decode(ctx context.Context, in Input) (*Output, error) {
	plan, err := e.calls.Decode(in.CallData)
	if err != nil {
		return nil, err
	}

	observed := e.events.DecodeAll(in.Logs, e.logger)
	if len(observed) == 0 {
		return nil, model.ErrNoSwapActivity
	}

	session := newSession(ctx, e.pools, e.tokens, e.logger)
	hops, err := session.enrich(observed)
	if err != nil {
		return nil, err
	}

	if in.Diagnostic {
		return &Output{Candidates: session.describeCandidates(buildCandidates(hops, plan.Intents))}, nil
	}

	core, err := resolve(plan, hops, in)
	if err != nil {
		return nil, err
	}

	return &Output{Resolved: session.finalize(core)}, nil
}

// poolHop is one observed pool swap mapped onto token flow direction.
type poolHop struct {
	pool      common.Address
	logIndex  uint64
	sender    common.Address
	recipient common.Address
	tokenIn   common.Address
	tokenOut  common.Address
	amountIn  *big.Int
	amountOut *big.Int
}

// session holds per-decode metadata caches. It is discarded when the decode
// call returns and is never shared across invocations.
type session struct {
	ctx    context.Context
	pools  PoolMetadataResolver
	tokens TokenMetadataResolver
	logger *zap.Logger

	poolMeta   map[common.Address]model.PoolMeta
	decimals   map[common.Address]uint8
	unverified bool
}

func newSession(ctx context.Context, pools PoolMetadataResolver, tokens TokenMetadataResolver, logger *zap.Logger) *session {
	return &session{
		ctx:      ctx,
		pools:    pools,
		tokens:   tokens,
		logger:   logger,
		poolMeta: make(map[common.Address]model.PoolMeta),
		decimals: make(map[common.Address]uint8),
	}
}

// enrich maps each observed swap's signed deltas onto token flow using the
// pool's token pair. The pool perspective holds: the positive delta entered
// the pool, the negative delta left it.
func (s *session) enrich(observed []model.ObservedSwap) ([]poolHop, error) {
	hops := make([]poolHop, 0, len(observed))
	for _, swap := range observed {
		meta, err := s.lookupPool(swap.Pool)
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", swap.Pool.Hex(), err)
		}

		hop := poolHop{
			pool:      swap.Pool,
			logIndex:  swap.LogIndex,
			sender:    swap.Sender,
			recipient: swap.Recipient,
		}
		if swap.Amount0.Sign() > 0 {
			hop.tokenIn, hop.tokenOut = meta.Token0, meta.Token1
			hop.amountIn = new(big.Int).Set(swap.Amount0)
			hop.amountOut = new(big.Int).Neg(swap.Amount1)
		} else {
			hop.tokenIn, hop.tokenOut = meta.Token1, meta.Token0
			hop.amountIn = new(big.Int).Set(swap.Amount1)
			hop.amountOut = new(big.Int).Neg(swap.Amount0)
		}
		hops = append(hops, hop)
	}
	return hops, nil
}

func (s *session) lookupPool(pool common.Address) (model.PoolMeta, error) {
	if meta, ok := s.poolMeta[pool]; ok {
		return meta, nil
	}
	meta, err := s.pools.PoolMetadata(s.ctx, pool)
	if err != nil {
		return model.PoolMeta{}, err
	}
	s.poolMeta[pool] = meta
	return meta, nil
}

// tokenDecimals resolves token decimals, substituting the default of 18 and
// flagging the session unverified when the lookup fails.
func (s *session) tokenDecimals(token common.Address) uint8 {
	if d, ok := s.decimals[token]; ok {
		return d
	}
	meta, err := s.tokens.TokenMetadata(s.ctx, token)
	if err != nil {
		if !errors.Is(err, model.ErrTokenLookupFailed) {
			s.logger.Warn("token metadata lookup failed",
				zap.String("token", token.Hex()), zap.Error(err))
		}
		s.unverified = true
		s.decimals[token] = defaultDecimals
		return defaultDecimals
	}
	s.decimals[token] = meta.Decimals
	return meta.Decimals
}

// finalize scales the raw amounts into decimal strings.
func (s *session) finalize(core resolvedCore) *model.ResolvedSwap {
	decimalsIn := s.tokenDecimals(core.tokenIn)
	decimalsOut := s.tokenDecimals(core.tokenOut)

	return &model.ResolvedSwap{
		Sender:       core.sender.Hex(),
		Recipient:    core.recipient.Hex(),
		TokenIn:      core.tokenIn.Hex(),
		TokenOut:     core.tokenOut.Hex(),
		AmountInRaw:  core.amountIn.String(),
		AmountOutRaw: core.amountOut.String(),
		AmountIn:     NormalizeAmount(core.amountIn, decimalsIn),
		AmountOut:    NormalizeAmount(core.amountOut, decimalsOut),
		NativeIn:     core.nativeIn,
		NativeOut:    core.nativeOut,
		Unverified:   s.unverified,
	}
}

// describeCandidates renders scored candidates for external inspection, best
// first. Score ties go to the larger input amount, then the earlier log.
func (s *session) describeCandidates(candidates []scoredCandidate) []model.CandidateMatch {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		a, b := candidates[i].seq[0], candidates[j].seq[0]
		if cmp := a.amountIn.Cmp(b.amountIn); cmp != 0 {
			return cmp > 0
		}
		return a.logIndex < b.logIndex
	})

	out := make([]model.CandidateMatch, 0, len(candidates))
	for _, candidate := range candidates {
		seq := candidate.seq
		first, last := seq[0], seq[len(seq)-1]

		tokens := make([]string, 0, len(seq)+1)
		tokens = append(tokens, first.tokenIn.Hex())
		for _, hop := range seq {
			tokens = append(tokens, hop.tokenOut.Hex())
		}

		out = append(out, model.CandidateMatch{
			TokenIn:       first.tokenIn.Hex(),
			TokenOut:      last.tokenOut.Hex(),
			AmountInRaw:   first.amountIn.String(),
			AmountOutRaw:  last.amountOut.String(),
			HopCount:      len(seq),
			PathTokens:    tokens,
			FirstLogIndex: first.logIndex,
			LastLogIndex:  last.logIndex,
			IntentIndex:   candidate.intentIndex,
			Score:         candidate.score,
		})
	}
	return out
}
