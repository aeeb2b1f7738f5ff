package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
}

type collectionForm struct {
	Type  string `json:"type" validate:"required,collectiontype"`
	Genre string `json:"genre" validate:"required,genrename"`
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()

	resp := v.Validate(signupForm{Username: "ab", Email: "not-an-email"})
	require.NotNil(t, resp)
	require.Len(t, resp.Errors, 2)

	byField := map[string]string{}
	for _, e := range resp.Errors {
		byField[e.Field] = e.Msg
	}
	assert.Equal(t, "username must be at least 3 characters long", byField["username"])
	assert.Equal(t, "email must be a valid email address", byField["email"])
}

func TestValidateAcceptsValidStruct(t *testing.T) {
	v := NewValidator()
	assert.Nil(t, v.Validate(signupForm{Username: "vmolnar", Email: "vera@example.com"}))
}

func TestCollectionTypeRule(t *testing.T) {
	v := NewValidator()

	for _, typ := range []string{"tour", "exposition", "TOUR", "Exposition"} {
		assert.Nil(t, v.Validate(collectionForm{Type: typ, Genre: "Street Art"}), typ)
	}

	resp := v.Validate(collectionForm{Type: "museum", Genre: "Street Art"})
	require.NotNil(t, resp)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "type", resp.Errors[0].Field)
	assert.Equal(t, "type must be either tour or exposition", resp.Errors[0].Msg)
}

func TestGenreNameRule(t *testing.T) {
	v := NewValidator()

	for _, name := range []string{"Street Art", "Abstract-Expressionism", "3d Sculpture"} {
		assert.Nil(t, v.Validate(collectionForm{Type: "tour", Genre: name}), name)
	}
	for _, name := range []string{"Crème Brûlée", "art!", "a/b"} {
		resp := v.Validate(collectionForm{Type: "tour", Genre: name})
		require.NotNil(t, resp, name)
		assert.Equal(t, "genre", resp.Errors[0].Field)
	}
}
