package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/lunchclub/internal/auth"
	"github.com/mmynk/lunchclub/internal/grouping"
	"github.com/mmynk/lunchclub/internal/metrics"
	"github.com/mmynk/lunchclub/internal/middleware"
	"github.com/mmynk/lunchclub/internal/models"
	"github.com/mmynk/lunchclub/internal/roster"
	"github.com/mmynk/lunchclub/internal/storage"
	"github.com/mmynk/lunchclub/pkg/api"
	"github.com/mmynk/lunchclub/pkg/api/apiconnect"
)

// ProtectedProcedures change stored state and require an operator token.
var ProtectedProcedures = []string{
	apiconnect.LunchServiceImportRosterProcedure,
	apiconnect.LunchServiceCommitRoundProcedure,
}

// LunchService implements the Connect LunchService.
type LunchService struct {
	apiconnect.UnimplementedLunchServiceHandler

	store        storage.Store
	planner      *Planner
	metrics      *metrics.Metrics
	minGroupSize int

	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
}

// Options configures a LunchService.
type Options struct {
	MinGroupSize  int
	HistoryWindow time.Duration

	// Authenticator and JWTManager may be nil when operator auth is disabled.
	Authenticator auth.Authenticator
	JWTManager    *auth.JWTManager
	Metrics       *metrics.Metrics
}

// NewLunchService creates a new LunchService with the given storage backend.
func NewLunchService(store storage.Store, opts Options) *LunchService {
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	return &LunchService{
		store:         store,
		planner:       NewPlanner(store, opts.HistoryWindow),
		metrics:       m,
		minGroupSize:  opts.MinGroupSize,
		authenticator: opts.Authenticator,
		jwtManager:    opts.JWTManager,
	}
}

// Login exchanges operator credentials for a bearer token.
func (s *LunchService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	slog.Info("Login request received", "username", req.Msg.Username)

	if s.authenticator == nil || s.jwtManager == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, auth.ErrAuthDisabled)
	}

	if err := s.authenticator.Authenticate(req.Msg.Username, req.Msg.Password); err != nil {
		if errors.Is(err, auth.ErrAuthDisabled) {
			return nil, connect.NewError(connect.CodeFailedPrecondition, err)
		}
		return nil, connect.NewError(connect.CodeUnauthenticated, err)
	}

	token, expiresAt, err := s.jwtManager.Generate(req.Msg.Username)
	if err != nil {
		slog.Error("Login failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&api.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	}), nil
}

// ImportRoster replaces the stored roster.
func (s *LunchService) ImportRoster(ctx context.Context, req *connect.Request[api.ImportRosterRequest]) (*connect.Response[api.ImportRosterResponse], error) {
	slog.Info("ImportRoster request received", "members_count", len(req.Msg.Members))

	members := make([]models.Member, len(req.Msg.Members))
	for i, m := range req.Msg.Members {
		members[i] = models.Member{Username: m.Username, Department: m.Department}
	}
	if err := roster.ValidateMembers(members); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	if err := s.store.ReplaceRoster(ctx, members); err != nil {
		slog.Error("ImportRoster failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Roster imported",
		"members_count", len(members),
		"operator", middleware.GetOperator(ctx),
	)

	return connect.NewResponse(&api.ImportRosterResponse{MemberCount: len(members)}), nil
}

// ListMembers returns the stored roster.
func (s *LunchService) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	members, err := s.store.ListMembers(ctx)
	if err != nil {
		slog.Error("ListMembers failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]api.Member, len(members))
	for i, m := range members {
		out[i] = api.Member{Username: m.Username, Department: m.Department}
	}

	return connect.NewResponse(&api.ListMembersResponse{Members: out}), nil
}

// FormGroups previews a formation from the stored roster and history.
func (s *LunchService) FormGroups(ctx context.Context, req *connect.Request[api.FormGroupsRequest]) (*connect.Response[api.FormGroupsResponse], error) {
	started := time.Now()

	minGroupSize := s.minGroupSize
	if req.Msg.MinGroupSize != 0 {
		minGroupSize = req.Msg.MinGroupSize
	}

	formationDate := roster.Today()
	if req.Msg.FormationDate != "" {
		date, err := roster.ParseDate(req.Msg.FormationDate)
		if err != nil {
			s.metrics.ObserveFailure(metrics.OutcomeInvalid)
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		formationDate = date
	}

	seed := rand.Uint64()
	if req.Msg.Seed != nil {
		seed = *req.Msg.Seed
	}

	slog.Info("FormGroups request received",
		"min_group_size", minGroupSize,
		"formation_date", formationDate.Format(roster.DateLayout),
		"seed", seed,
	)

	plan, err := s.planner.Plan(ctx, nil, minGroupSize, formationDate, NewRand(seed))
	if err != nil {
		code := connect.CodeInternal
		outcome := metrics.OutcomeInternalErr
		if errors.Is(err, grouping.ErrConfiguration) {
			code = connect.CodeInvalidArgument
			outcome = metrics.OutcomeInvalid
		}
		s.metrics.ObserveFailure(outcome)
		slog.Error("FormGroups failed", "error", err)
		return nil, connect.NewError(code, err)
	}
	s.metrics.ObserveFormation(started, grouping.Sizes(plan.Groups), plan.RepeatPairs)

	groups := make([]api.Group, len(plan.Groups))
	for i, g := range plan.Groups {
		members := make([]api.Member, 0, g.Size())
		for _, m := range g.Members() {
			members = append(members, api.Member{Username: m.Username, Department: m.Department})
		}
		groups[i] = api.Group{Members: members}
	}

	slog.Info("FormGroups successful",
		"groups_count", len(groups),
		"repeat_pairs", plan.RepeatPairs,
		"history_rounds", plan.HistoryRounds,
	)

	return connect.NewResponse(&api.FormGroupsResponse{
		Groups:      groups,
		RepeatPairs: plan.RepeatPairs,
		Seed:        seed,
	}), nil
}

// CommitRound stores groups as a round for the given formation date.
func (s *LunchService) CommitRound(ctx context.Context, req *connect.Request[api.CommitRoundRequest]) (*connect.Response[api.CommitRoundResponse], error) {
	slog.Info("CommitRound request received",
		"formation_date", req.Msg.FormationDate,
		"groups_count", len(req.Msg.Groups),
	)

	date, err := roster.ParseDate(req.Msg.FormationDate)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	groups, err := toModelGroups(req.Msg.Groups)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	round := &models.Round{FormationDate: date, Groups: groups}
	if err := s.store.CreateRound(ctx, round); err != nil {
		slog.Error("CommitRound failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	s.metrics.RoundsCommitted.Inc()

	slog.Info("Round committed",
		"round_id", round.ID,
		"members_count", round.MemberCount(),
		"operator", middleware.GetOperator(ctx),
	)

	return connect.NewResponse(&api.CommitRoundResponse{Round: toAPIRound(round)}), nil
}

// GetRound retrieves a committed round by ID.
func (s *LunchService) GetRound(ctx context.Context, req *connect.Request[api.GetRoundRequest]) (*connect.Response[api.GetRoundResponse], error) {
	slog.Info("GetRound request received", "round_id", req.Msg.RoundID)

	if req.Msg.RoundID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("round_id required"))
	}

	round, err := s.store.GetRound(ctx, req.Msg.RoundID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		slog.Error("GetRound failed", "round_id", req.Msg.RoundID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	return connect.NewResponse(&api.GetRoundResponse{Round: toAPIRound(round)}), nil
}

// ListRounds returns every committed round, newest first.
func (s *LunchService) ListRounds(ctx context.Context, req *connect.Request[api.ListRoundsRequest]) (*connect.Response[api.ListRoundsResponse], error) {
	summaries, err := s.store.ListRounds(ctx)
	if err != nil {
		slog.Error("ListRounds failed", "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]api.RoundSummary, len(summaries))
	for i, rs := range summaries {
		out[i] = api.RoundSummary{
			ID:            rs.ID,
			FormationDate: rs.FormationDate.Format(roster.DateLayout),
			GroupCount:    rs.GroupCount,
			MemberCount:   rs.MemberCount,
			CreatedAt:     rs.CreatedAt,
		}
	}

	slog.Info("ListRounds successful", "count", len(out))

	return connect.NewResponse(&api.ListRoundsResponse{Rounds: out}), nil
}

// NewRand returns a generator fully determined by seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// toModelGroups sanitizes usernames and rejects empty groups and members
// listed twice.
func toModelGroups(in [][]string) ([]models.Group, error) {
	if len(in) == 0 {
		return nil, errors.New("at least one group is required")
	}

	seen := make(map[string]bool)
	groups := make([]models.Group, len(in))
	for i, members := range in {
		if len(members) == 0 {
			return nil, fmt.Errorf("group %d is empty", i+1)
		}
		g := models.Group{Position: i, Members: make([]string, 0, len(members))}
		for _, raw := range members {
			username := roster.SanitizeUsername(raw)
			if username == "" {
				return nil, fmt.Errorf("group %d has an empty username", i+1)
			}
			if seen[username] {
				return nil, fmt.Errorf("%w: %s", roster.ErrDuplicateMember, username)
			}
			seen[username] = true
			g.Members = append(g.Members, username)
		}
		groups[i] = g
	}
	return groups, nil
}

func toAPIRound(r *models.Round) *api.Round {
	groups := make([]api.RoundGroup, len(r.Groups))
	for i, g := range r.Groups {
		groups[i] = api.RoundGroup{ID: g.ID, Members: g.Members}
	}
	return &api.Round{
		ID:            r.ID,
		FormationDate: r.FormationDate.Format(roster.DateLayout),
		Groups:        groups,
		CreatedAt:     r.CreatedAt,
	}
}
