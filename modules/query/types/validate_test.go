package types_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/wormholelabs-xyz/rootsync/modules/query/types"
	rootsynctesting "github.com/wormholelabs-xyz/rootsync/testing"
)

func TestValidateResponse(t *testing.T) {
	var (
		resp  *types.QueryResponse
		shape types.ExpectedShape
	)

	ethCall := func() *types.EthCallQueryRequest {
		return resp.Request.Requests[0].Query.(*types.EthCallQueryRequest)
	}
	ethResult := func() *types.EthCallQueryResponse {
		return resp.Responses[0].Response.(*types.EthCallQueryResponse)
	}

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"success",
			func() {},
			nil,
		},
		{
			"success: eth_call_with_finality",
			func() {
				shape.QueryType = types.EthCallWithFinalityQueryType
				shape.Finality = "finalized"
				request, err := shape.NewRequest(ethResult().BlockNumber, 1)
				require.NoError(t, err)
				body, err := shape.NewResponse(ethResult().BlockNumber, ethResult().BlockHash, ethResult().BlockTime, ethResult().Results)
				require.NoError(t, err)
				resp.Request = *request
				resp.Responses[0].Response = body
			},
			nil,
		},
		{
			"invalid shape",
			func() {
				shape.Contract = common.Address{}
			},
			types.ErrInvalidRequestContract,
		},
		{
			"two requests",
			func() {
				resp.Request.Requests = append(resp.Request.Requests, resp.Request.Requests[0])
			},
			types.ErrInvalidNumberOfRequests,
		},
		{
			"no responses",
			func() {
				resp.Responses = nil
			},
			types.ErrInvalidNumberOfResponses,
		},
		{
			"request chain id",
			func() {
				resp.Request.Requests[0].ChainID = 10002
			},
			types.ErrInvalidRequestChainID,
		},
		{
			"response chain id",
			func() {
				resp.Responses[0].ChainID = 10002
			},
			types.ErrInvalidResponseChainID,
		},
		{
			"request type",
			func() {
				resp.Request.Requests[0].Query = &types.EthCallByTimestampQueryRequest{CallData: ethCall().CallData}
			},
			types.ErrInvalidRequestType,
		},
		{
			"response type",
			func() {
				resp.Responses[0].Response = (*types.EthCallWithFinalityQueryResponse)(ethResult())
			},
			types.ErrInvalidResponseType,
		},
		{
			"request finality",
			func() {
				shape.QueryType = types.EthCallWithFinalityQueryType
				shape.Finality = "finalized"
				resp.Request.Requests[0].Query = &types.EthCallWithFinalityQueryRequest{
					BlockID:  ethCall().BlockID,
					Finality: "safe",
					CallData: ethCall().CallData,
				}
				resp.Responses[0].Response = (*types.EthCallWithFinalityQueryResponse)(ethResult())
			},
			types.ErrInvalidRequestFinality,
		},
		{
			"two calls",
			func() {
				query := ethCall()
				query.CallData = append(query.CallData, query.CallData[0])
			},
			types.ErrInvalidRequestCallDataLength,
		},
		{
			"wrong contract",
			func() {
				ethCall().CallData[0].To = common.HexToAddress("0x01")
			},
			types.ErrInvalidRequestContract,
		},
		{
			"wrong selector",
			func() {
				ethCall().CallData[0].Data = []byte{0xde, 0xad, 0xbe, 0xef}
			},
			types.ErrInvalidRequestSignature,
		},
		{
			"selector with arguments",
			func() {
				ethCall().CallData[0].Data = append(types.PackLatestRoot(), 0)
			},
			types.ErrInvalidRequestSignature,
		},
		{
			"two results",
			func() {
				result := ethResult()
				result.Results = append(result.Results, result.Results[0])
			},
			types.ErrInvalidResponseResultsLength,
		},
		{
			"short result",
			func() {
				result := ethResult()
				result.Results[0] = result.Results[0][1:]
			},
			types.ErrInvalidResponseResultLength,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fx := rootsynctesting.NewLatestRootResponse(rootsynctesting.HashOf("root"), 100, rootsynctesting.GenesisTime)
			resp = fx.Build(t)
			shape = fx.Shape

			tc.malleate()

			result, err := types.ValidateResponse(resp, shape)
			if tc.expErr == nil {
				require.NoError(t, err)
				require.Equal(t, fx.Root, result.RootHash)
				require.Equal(t, fx.BlockNumber, result.BlockNumber)
				require.Equal(t, fx.BlockHash, result.BlockHash)
				require.Equal(t, uint64(fx.BlockTime.UnixMicro()), result.BlockTime)
			} else {
				require.ErrorIs(t, err, tc.expErr)
				require.True(t, types.IsValidationError(err))
			}
		})
	}
}

func TestExpectedShapeValidate(t *testing.T) {
	testCases := []struct {
		name     string
		malleate func(*types.ExpectedShape)
		expErr   error
	}{
		{"success", func(*types.ExpectedShape) {}, nil},
		{"unsupported type", func(s *types.ExpectedShape) { s.QueryType = types.SolanaPdaQueryType }, types.ErrUnsupportedQueryType},
		{"missing finality", func(s *types.ExpectedShape) { s.QueryType = types.EthCallWithFinalityQueryType }, types.ErrInvalidRequestFinality},
		{"zero contract", func(s *types.ExpectedShape) { s.Contract = common.Address{} }, types.ErrInvalidRequestContract},
		{"result width", func(s *types.ExpectedShape) { s.ResultWidth = 20 }, types.ErrInvalidResponseResultLength},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			shape := rootsynctesting.LatestRootShape
			tc.malleate(&shape)

			err := shape.Validate()
			if tc.expErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tc.expErr)
			}
		})
	}
}
