package config

import (
	"testing"
	"time"

	"sgad-api/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("NAF_SCHEME_OBJETIVOS", "")
	t.Setenv("NAF_SCHEME_OBJETIVOS_EQUIPA", "")
	t.Setenv("NAF_DEFAULT_SCHEME", "")
	t.Setenv("JWT_EXPIRY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, scoring.SchemeObjetivosEquipa, cfg.Scoring.DefaultScheme)

	s, ok := cfg.Scoring.Scheme("")
	require.True(t, ok)
	assert.Equal(t, 40.0, s.Weight(scoring.ObjetivosIndividuais))

	s, ok = cfg.Scoring.Scheme(scoring.SchemeObjetivos)
	require.True(t, ok)
	assert.Equal(t, 60.0, s.Weight(scoring.ObjetivosIndividuais))

	assert.Contains(t, cfg.Database.DSN(), "dbname=sgad")
}

func TestLoad_SchemeOverride(t *testing.T) {
	t.Setenv("NAF_SCHEME_OBJETIVOS", "individual:50,transversais:25,tecnicas:25")
	t.Setenv("NAF_DEFAULT_SCHEME", scoring.SchemeObjetivos)

	cfg, err := Load()
	require.NoError(t, err)

	s, ok := cfg.Scoring.Scheme("")
	require.True(t, ok)
	assert.Equal(t, 50.0, s.Weight(scoring.ObjetivosIndividuais))
	assert.Equal(t, 25.0, s.Weight(scoring.CompetenciasTecnicas))
}

func TestLoad_InvalidScheme(t *testing.T) {
	t.Setenv("NAF_SCHEME_OBJETIVOS_EQUIPA", "individual:40,equipa:20")

	_, err := Load()
	assert.ErrorIs(t, err, scoring.ErrInvalidScheme)
}

func TestLoad_UnknownDefaultScheme(t *testing.T) {
	t.Setenv("NAF_DEFAULT_SCHEME", "trimestral")

	_, err := Load()
	assert.Error(t, err)
}

func TestDSN_PrefersURL(t *testing.T) {
	c := DatabaseConfig{URL: "postgres://u:p@db:5432/sgad"}
	assert.Equal(t, "postgres://u:p@db:5432/sgad", c.DSN())
}
