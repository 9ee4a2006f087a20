package httpapi

import (
	"net/http"

	"github.com/R3E-Network/solana_layer/internal/audit"
	"github.com/R3E-Network/solana_layer/internal/errors"
	"github.com/R3E-Network/solana_layer/internal/httputil"
	"github.com/R3E-Network/solana_layer/internal/instruction"
	"github.com/R3E-Network/solana_layer/internal/logging"
	"github.com/R3E-Network/solana_layer/internal/signer"
)

const (
	resultOK      = "ok"
	resultValid   = "valid"
	resultInvalid = "invalid"
)

func (s *Server) handleKeypair(w http.ResponseWriter, r *http.Request) {
	kp := s.keys.Generate()
	s.metrics.RecordKeypair()
	s.record(r, audit.OpGenerateKeypair, kp.PublicBase58(), nil)

	httputil.WriteSuccess(w, keypairResponse{
		Pubkey: kp.PublicBase58(),
		Secret: kp.SecretBase58(),
	})
}

func (s *Server) handleSignMessage(w http.ResponseWriter, r *http.Request) {
	var req signMessageRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := signer.Sign(*req.Secret, []byte(*req.Message))
	if err != nil {
		s.metrics.RecordSignature(errorCode(err))
		s.record(r, audit.OpSignMessage, "", err)
		s.fail(w, r, err)
		return
	}

	s.metrics.RecordSignature(resultOK)
	s.record(r, audit.OpSignMessage, result.PublicKeyBase58(), nil)
	httputil.WriteSuccess(w, signMessageResponse{
		Signature: result.SignatureBase64(),
		PublicKey: result.PublicKeyBase58(),
		Message:   *req.Message,
	})
}

func (s *Server) handleVerifyMessage(w http.ResponseWriter, r *http.Request) {
	var req verifyMessageRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := signer.Verify(*req.Pubkey, []byte(*req.Message), *req.Signature)
	if err != nil {
		s.metrics.RecordVerification(errorCode(err))
		s.record(r, audit.OpVerifyMessage, "", err)
		s.fail(w, r, err)
		return
	}

	if result.Valid {
		s.metrics.RecordVerification(resultValid)
		s.recordResult(r, audit.OpVerifyMessage, *req.Pubkey, audit.ResultOK, "")
	} else {
		s.metrics.RecordVerification(resultInvalid)
		s.recordResult(r, audit.OpVerifyMessage, *req.Pubkey, audit.ResultInvalid, "")
	}

	httputil.WriteSuccess(w, verifyMessageResponse{
		Valid:   result.Valid,
		Message: *req.Message,
		Pubkey:  *req.Pubkey,
	})
}

func (s *Server) handleSendSol(w http.ResponseWriter, r *http.Request) {
	var req sendSolRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	ix, err := instruction.Transfer(*req.From, *req.To, *req.Lamports)
	if !s.built(w, r, "system_transfer", audit.OpSendSol, *req.From, err) {
		return
	}

	httputil.WriteSuccess(w, sendSolResponse{
		ProgramID:       ix.ProgramID.String(),
		Accounts:        ix.AccountKeys(),
		InstructionData: ix.DataBase64(),
	})
}

func (s *Server) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	var req createTokenRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	ix, err := instruction.InitializeMint(*req.Mint, *req.MintAuthority, *req.Decimals)
	if !s.built(w, r, "initialize_mint", audit.OpCreateToken, *req.Mint, err) {
		return
	}
	httputil.WriteSuccess(w, newTokenInstructionResponse(ix))
}

func (s *Server) handleMintToken(w http.ResponseWriter, r *http.Request) {
	var req mintTokenRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	ix, err := instruction.MintTo(*req.Mint, *req.Destination, *req.Authority, *req.Amount)
	if !s.built(w, r, "mint_to", audit.OpMintToken, *req.Mint, err) {
		return
	}
	httputil.WriteSuccess(w, newTokenInstructionResponse(ix))
}

func (s *Server) handleSendToken(w http.ResponseWriter, r *http.Request) {
	var req sendTokenRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	ix, err := instruction.TokenTransfer(*req.Owner, *req.Destination, *req.Mint, *req.Amount)
	if !s.built(w, r, "token_transfer", audit.OpSendToken, *req.Owner, err) {
		return
	}
	httputil.WriteSuccess(w, newSendTokenResponse(ix))
}

// built records the outcome of an instruction build and writes the failure
// envelope when err is set. It reports whether the caller should continue.
func (s *Server) built(w http.ResponseWriter, r *http.Request, kind string, op audit.Operation, subject string, err error) bool {
	if err != nil {
		s.metrics.RecordInstruction(kind, errorCode(err))
		s.record(r, op, "", err)
		s.fail(w, r, err)
		return false
	}
	s.metrics.RecordInstruction(kind, resultOK)
	s.record(r, op, subject, nil)
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	serviceErr := httputil.WriteServiceError(w, r, err)

	entry := s.logger.WithContext(r.Context()).
		WithField("path", r.URL.Path).
		WithField("code", serviceErr.Code)
	if serviceErr.HTTPStatus >= http.StatusInternalServerError {
		entry.WithError(err).Error("Request failed")
		return
	}
	entry.WithError(err).Debug("Request rejected")
}

func (s *Server) record(r *http.Request, op audit.Operation, publicKey string, err error) {
	if err == nil {
		s.recordResult(r, op, publicKey, audit.ResultOK, "")
		return
	}
	s.recordResult(r, op, publicKey, audit.ResultRejected, errorCode(err))
}

func errorCode(err error) string {
	if serviceErr := errors.GetServiceError(err); serviceErr != nil {
		return string(serviceErr.Code)
	}
	return string(errors.CodeInternal)
}

func (s *Server) recordResult(r *http.Request, op audit.Operation, publicKey, result, code string) {
	if s.audit == nil {
		return
	}
	s.audit.Log(audit.Event{
		Operation: op,
		PublicKey: publicKey,
		Result:    result,
		ErrorCode: code,
		TraceID:   logging.GetTraceID(r.Context()),
		UserID:    logging.GetUserID(r.Context()),
	})
}
