package adminapi

import (
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"flowkernel/crypto"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeAddress(s string) (crypto.Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return crypto.Address{}, err
	}
	return crypto.NewAddress(b)
}

func decodeHash(s string) (crypto.Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return crypto.Hash{}, err
	}
	return crypto.HashFromBytes(b)
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func decodeHexSig(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

func hexEncode(b []byte) string {
	return hex.EncodeToString(b)
}

// decodeCallerAndURLHash is the common shape for routes of the form
// POST /.../{param} with a JSON body carrying only the caller address.
func decodeCallerAndURLHash(w http.ResponseWriter, r *http.Request, param string) (crypto.Hash, crypto.Address, bool) {
	id, err := decodeHash(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return crypto.Hash{}, crypto.Address{}, false
	}
	var req struct {
		Caller string `json:"caller"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return crypto.Hash{}, crypto.Address{}, false
	}
	caller, err := decodeAddress(req.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return crypto.Hash{}, crypto.Address{}, false
	}
	return id, caller, true
}
