// Package apiconnect wires the api messages into a Connect service:
// procedure names, the handler interface and mux, and a typed client.
package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/lunchclub/pkg/api"
)

// LunchServiceName is the fully-qualified name of the LunchService service.
const LunchServiceName = "lunchclub.v1.LunchService"

// Procedure paths, relative to the server base URL.
const (
	LunchServiceLoginProcedure        = "/lunchclub.v1.LunchService/Login"
	LunchServiceImportRosterProcedure = "/lunchclub.v1.LunchService/ImportRoster"
	LunchServiceListMembersProcedure  = "/lunchclub.v1.LunchService/ListMembers"
	LunchServiceFormGroupsProcedure   = "/lunchclub.v1.LunchService/FormGroups"
	LunchServiceCommitRoundProcedure  = "/lunchclub.v1.LunchService/CommitRound"
	LunchServiceGetRoundProcedure     = "/lunchclub.v1.LunchService/GetRound"
	LunchServiceListRoundsProcedure   = "/lunchclub.v1.LunchService/ListRounds"
)

// LunchServiceHandler is implemented by the server.
type LunchServiceHandler interface {
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	ImportRoster(context.Context, *connect.Request[api.ImportRosterRequest]) (*connect.Response[api.ImportRosterResponse], error)
	ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error)
	FormGroups(context.Context, *connect.Request[api.FormGroupsRequest]) (*connect.Response[api.FormGroupsResponse], error)
	CommitRound(context.Context, *connect.Request[api.CommitRoundRequest]) (*connect.Response[api.CommitRoundResponse], error)
	GetRound(context.Context, *connect.Request[api.GetRoundRequest]) (*connect.Response[api.GetRoundResponse], error)
	ListRounds(context.Context, *connect.Request[api.ListRoundsRequest]) (*connect.Response[api.ListRoundsResponse], error)
}

// NewLunchServiceHandler builds an HTTP handler for every procedure.
// It returns the path prefix on which to mount the handler.
func NewLunchServiceHandler(svc LunchServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	handlers := map[string]http.Handler{
		LunchServiceLoginProcedure:        connect.NewUnaryHandler(LunchServiceLoginProcedure, svc.Login, opts...),
		LunchServiceImportRosterProcedure: connect.NewUnaryHandler(LunchServiceImportRosterProcedure, svc.ImportRoster, opts...),
		LunchServiceListMembersProcedure:  connect.NewUnaryHandler(LunchServiceListMembersProcedure, svc.ListMembers, opts...),
		LunchServiceFormGroupsProcedure:   connect.NewUnaryHandler(LunchServiceFormGroupsProcedure, svc.FormGroups, opts...),
		LunchServiceCommitRoundProcedure:  connect.NewUnaryHandler(LunchServiceCommitRoundProcedure, svc.CommitRound, opts...),
		LunchServiceGetRoundProcedure:     connect.NewUnaryHandler(LunchServiceGetRoundProcedure, svc.GetRound, opts...),
		LunchServiceListRoundsProcedure:   connect.NewUnaryHandler(LunchServiceListRoundsProcedure, svc.ListRounds, opts...),
	}

	return "/" + LunchServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// UnimplementedLunchServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedLunchServiceHandler struct{}

func unimplemented(procedure string) error {
	return connect.NewError(connect.CodeUnimplemented, errors.New(strings.TrimPrefix(procedure, "/")+" is not implemented"))
}

func (UnimplementedLunchServiceHandler) Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return nil, unimplemented(LunchServiceLoginProcedure)
}

func (UnimplementedLunchServiceHandler) ImportRoster(context.Context, *connect.Request[api.ImportRosterRequest]) (*connect.Response[api.ImportRosterResponse], error) {
	return nil, unimplemented(LunchServiceImportRosterProcedure)
}

func (UnimplementedLunchServiceHandler) ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	return nil, unimplemented(LunchServiceListMembersProcedure)
}

func (UnimplementedLunchServiceHandler) FormGroups(context.Context, *connect.Request[api.FormGroupsRequest]) (*connect.Response[api.FormGroupsResponse], error) {
	return nil, unimplemented(LunchServiceFormGroupsProcedure)
}

func (UnimplementedLunchServiceHandler) CommitRound(context.Context, *connect.Request[api.CommitRoundRequest]) (*connect.Response[api.CommitRoundResponse], error) {
	return nil, unimplemented(LunchServiceCommitRoundProcedure)
}

func (UnimplementedLunchServiceHandler) GetRound(context.Context, *connect.Request[api.GetRoundRequest]) (*connect.Response[api.GetRoundResponse], error) {
	return nil, unimplemented(LunchServiceGetRoundProcedure)
}

func (UnimplementedLunchServiceHandler) ListRounds(context.Context, *connect.Request[api.ListRoundsRequest]) (*connect.Response[api.ListRoundsResponse], error) {
	return nil, unimplemented(LunchServiceListRoundsProcedure)
}

// LunchServiceClient is a client for the lunchclub.v1.LunchService service.
type LunchServiceClient interface {
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	ImportRoster(context.Context, *connect.Request[api.ImportRosterRequest]) (*connect.Response[api.ImportRosterResponse], error)
	ListMembers(context.Context, *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error)
	FormGroups(context.Context, *connect.Request[api.FormGroupsRequest]) (*connect.Response[api.FormGroupsResponse], error)
	CommitRound(context.Context, *connect.Request[api.CommitRoundRequest]) (*connect.Response[api.CommitRoundResponse], error)
	GetRound(context.Context, *connect.Request[api.GetRoundRequest]) (*connect.Response[api.GetRoundResponse], error)
	ListRounds(context.Context, *connect.Request[api.ListRoundsRequest]) (*connect.Response[api.ListRoundsResponse], error)
}

// NewLunchServiceClient constructs a client for the service at baseURL
// (for example, http://localhost:8080).
func NewLunchServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LunchServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)

	return &lunchServiceClient{
		login:        connect.NewClient[api.LoginRequest, api.LoginResponse](httpClient, baseURL+LunchServiceLoginProcedure, opts...),
		importRoster: connect.NewClient[api.ImportRosterRequest, api.ImportRosterResponse](httpClient, baseURL+LunchServiceImportRosterProcedure, opts...),
		listMembers:  connect.NewClient[api.ListMembersRequest, api.ListMembersResponse](httpClient, baseURL+LunchServiceListMembersProcedure, opts...),
		formGroups:   connect.NewClient[api.FormGroupsRequest, api.FormGroupsResponse](httpClient, baseURL+LunchServiceFormGroupsProcedure, opts...),
		commitRound:  connect.NewClient[api.CommitRoundRequest, api.CommitRoundResponse](httpClient, baseURL+LunchServiceCommitRoundProcedure, opts...),
		getRound:     connect.NewClient[api.GetRoundRequest, api.GetRoundResponse](httpClient, baseURL+LunchServiceGetRoundProcedure, opts...),
		listRounds:   connect.NewClient[api.ListRoundsRequest, api.ListRoundsResponse](httpClient, baseURL+LunchServiceListRoundsProcedure, opts...),
	}
}

type lunchServiceClient struct {
	login        *connect.Client[api.LoginRequest, api.LoginResponse]
	importRoster *connect.Client[api.ImportRosterRequest, api.ImportRosterResponse]
	listMembers  *connect.Client[api.ListMembersRequest, api.ListMembersResponse]
	formGroups   *connect.Client[api.FormGroupsRequest, api.FormGroupsResponse]
	commitRound  *connect.Client[api.CommitRoundRequest, api.CommitRoundResponse]
	getRound     *connect.Client[api.GetRoundRequest, api.GetRoundResponse]
	listRounds   *connect.Client[api.ListRoundsRequest, api.ListRoundsResponse]
}

func (c *lunchServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *lunchServiceClient) ImportRoster(ctx context.Context, req *connect.Request[api.ImportRosterRequest]) (*connect.Response[api.ImportRosterResponse], error) {
	return c.importRoster.CallUnary(ctx, req)
}

func (c *lunchServiceClient) ListMembers(ctx context.Context, req *connect.Request[api.ListMembersRequest]) (*connect.Response[api.ListMembersResponse], error) {
	return c.listMembers.CallUnary(ctx, req)
}

func (c *lunchServiceClient) FormGroups(ctx context.Context, req *connect.Request[api.FormGroupsRequest]) (*connect.Response[api.FormGroupsResponse], error) {
	return c.formGroups.CallUnary(ctx, req)
}

func (c *lunchServiceClient) CommitRound(ctx context.Context, req *connect.Request[api.CommitRoundRequest]) (*connect.Response[api.CommitRoundResponse], error) {
	return c.commitRound.CallUnary(ctx, req)
}

func (c *lunchServiceClient) GetRound(ctx context.Context, req *connect.Request[api.GetRoundRequest]) (*connect.Response[api.GetRoundResponse], error) {
	return c.getRound.CallUnary(ctx, req)
}

func (c *lunchServiceClient) ListRounds(ctx context.Context, req *connect.Request[api.ListRoundsRequest]) (*connect.Response[api.ListRoundsResponse], error) {
	return c.listRounds.CallUnary(ctx, req)
}
