package result

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type codeIssued struct {
	ExpiresAt         int64  `json:"expiresAt" validate:"required,gt=0"`
	MaskedDestination string `json:"maskedDestination,omitempty"`
}

type ResultSuite struct {
	suite.Suite
}

func TestResultSuite(t *testing.T) {
	suite.Run(t, new(ResultSuite))
}

func (s *ResultSuite) TestConstructors() {
	s.Run("ok carries data and no error", func() {
		r := OK(codeIssued{ExpiresAt: 10})
		s.True(r.Valid())
		s.True(r.IsOK())
		s.Nil(r.Err())
		data, ok := r.Data()
		s.True(ok)
		s.Equal(int64(10), data.ExpiresAt)
	})

	s.Run("fail carries error and no data", func() {
		r := Fail[codeIssued](NewError(CodeUnauthorized, "Code invalid"))
		s.True(r.Valid())
		s.False(r.IsOK())
		_, ok := r.Data()
		s.False(ok)
		s.Require().NotNil(r.Err())
		s.Equal(CodeUnauthorized, r.Err().Code)
		s.Equal(OriginServer, r.Err().Origin())
	})

	s.Run("zero value is invalid", func() {
		var r Result[codeIssued]
		s.False(r.Valid())
		s.False(r.IsOK())
		_, err := json.Marshal(r)
		s.Error(err)
	})

	s.Run("unknown code panics", func() {
		s.Panics(func() { NewError("TEAPOT", "short and stout") })
	})

	s.Run("local origins use internal code", func() {
		s.Equal(OriginTransport, NewTransportError("offline").Origin())
		s.Equal(OriginProtocol, NewProtocolError("garbled").Origin())
		s.Equal(CodeInternal, NewTransportError("offline").Code)
		s.Equal(CodeInternal, NewProtocolError("garbled").Code)
	})
}

func (s *ResultSuite) TestMarshal() {
	s.Run("ok envelope omits error", func() {
		body, err := json.Marshal(OK(codeIssued{ExpiresAt: 42, MaskedDestination: "p***@example.com"}))
		s.Require().NoError(err)
		s.JSONEq(`{"ok":true,"data":{"expiresAt":42,"maskedDestination":"p***@example.com"}}`, string(body))
	})

	s.Run("error envelope omits data", func() {
		body, err := json.Marshal(Fail[codeIssued](NewError(CodeTooManyRequest, "slow down")))
		s.Require().NoError(err)
		s.JSONEq(`{"ok":false,"error":{"code":"TOO_MANY_REQUESTS","message":"slow down"}}`, string(body))
	})
}

func (s *ResultSuite) TestDecodeAccepts() {
	s.Run("success payload", func() {
		r, err := Decode[codeIssued]([]byte(`{"ok":true,"data":{"expiresAt":1700000000000}}`))
		s.Require().NoError(err)
		data, ok := r.Data()
		s.True(ok)
		s.Equal(int64(1700000000000), data.ExpiresAt)
		s.Empty(data.MaskedDestination)
	})

	s.Run("server error passes through unchanged", func() {
		r, err := Decode[codeIssued]([]byte(`{"ok":false,"error":{"code":"UNAUTHORIZED","message":"Code invalid"}}`))
		s.Require().NoError(err)
		s.Require().NotNil(r.Err())
		s.Equal(CodeUnauthorized, r.Err().Code)
		s.Equal("Code invalid", r.Err().Message)
		s.Equal(OriginServer, r.Err().Origin())
	})

	s.Run("null error on success counts as absent", func() {
		r, err := Decode[codeIssued]([]byte(`{"ok":true,"data":{"expiresAt":5},"error":null}`))
		s.Require().NoError(err)
		s.True(r.IsOK())
		s.Nil(r.Err())
	})

	s.Run("null data on failure counts as absent", func() {
		r, err := Decode[codeIssued]([]byte(`{"ok":false,"data":null,"error":{"code":"UNAUTHORIZED","message":"Code invalid"}}`))
		s.Require().NoError(err)
		s.Require().NotNil(r.Err())
		s.Equal(CodeUnauthorized, r.Err().Code)
		_, ok := r.Data()
		s.False(ok)
	})

	s.Run("empty error message keeps the code", func() {
		r, err := Decode[codeIssued]([]byte(`{"ok":false,"error":{"code":"UNAUTHORIZED","message":""}}`))
		s.Require().NoError(err)
		s.Require().NotNil(r.Err())
		s.Equal(CodeUnauthorized, r.Err().Code)
		s.Empty(r.Err().Message)
	})

	s.Run("unknown payload fields are ignored", func() {
		_, err := Decode[codeIssued]([]byte(`{"ok":true,"data":{"expiresAt":5,"channel":"email"}}`))
		s.NoError(err)
	})

	s.Run("unmarshal uses the same rules", func() {
		var r Result[codeIssued]
		s.Require().NoError(json.Unmarshal([]byte(`{"ok":true,"data":{"expiresAt":5}}`), &r))
		s.True(r.IsOK())
		s.Error(json.Unmarshal([]byte(`{"data":{"expiresAt":5}}`), &r))
	})
}

func (s *ResultSuite) TestDecodeRejects() {
	cases := map[string]string{
		"not json":                  `<html>502 Bad Gateway</html>`,
		"null body":                 `null`,
		"array body":                `[]`,
		"missing ok":                `{"data":{"expiresAt":5}}`,
		"ok not boolean":            `{"ok":"true","data":{"expiresAt":5}}`,
		"ok null":                   `{"ok":null,"data":{"expiresAt":5}}`,
		"ok with error":             `{"ok":true,"data":{"expiresAt":5},"error":{"code":"UNAUTHORIZED","message":"x"}}`,
		"ok without data":           `{"ok":true}`,
		"ok with null data":         `{"ok":true,"data":null}`,
		"failure with data":         `{"ok":false,"data":{"expiresAt":5},"error":{"code":"UNAUTHORIZED","message":"x"}}`,
		"failure without error":     `{"ok":false}`,
		"unknown error code":        `{"ok":false,"error":{"code":"TEAPOT","message":"x"}}`,
		"missing error message":     `{"ok":false,"error":{"code":"UNAUTHORIZED"}}`,
		"failure with null error":   `{"ok":false,"error":null}`,
		"null error message":        `{"ok":false,"error":{"code":"UNAUTHORIZED","message":null}}`,
		"unexpected top-level key":  `{"ok":true,"data":{"expiresAt":5},"meta":{}}`,
		"payload fails validation":  `{"ok":true,"data":{"expiresAt":0}}`,
		"payload has wrong type":    `{"ok":true,"data":{"expiresAt":"soon"}}`,
		"payload is not an object":  `{"ok":true,"data":"done"}`,
		"empty body":                ``,
	}
	for name, body := range cases {
		s.Run(name, func() {
			_, err := Decode[codeIssued]([]byte(body))
			s.Require().Error(err)
			s.True(errors.Is(err, ErrMalformed))
		})
	}
}

// Every decoded result, accepted or not, satisfies the exactly-one invariant.
func TestDecodedResultsHoldInvariant(t *testing.T) {
	bodies := []string{
		`{"ok":true,"data":{"expiresAt":5}}`,
		`{"ok":false,"error":{"code":"VALIDATION_ERROR","message":"email is required"}}`,
		`{"ok":false,"error":{"code":"INTERNAL_SERVER_ERROR","message":"boom"}}`,
	}
	for _, body := range bodies {
		r, err := Decode[codeIssued]([]byte(body))
		require.NoError(t, err)
		assert.True(t, r.Valid(), body)
		assert.Equal(t, r.IsOK(), r.Err() == nil, body)
	}
}
