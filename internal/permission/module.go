package permission

// ModuleCode identifies a functional area gated independently for access control.
type ModuleCode string

const (
	ModuleDashboard       ModuleCode = "M01"
	ModuleUsers           ModuleCode = "M02"
	ModuleRoles           ModuleCode = "M03"
	ModuleCycles          ModuleCode = "M04"
	ModuleCompetencies    ModuleCode = "M05"
	ModuleOrgUnits        ModuleCode = "M06"
	ModuleObjectives      ModuleCode = "M07"
	ModuleSelfEvaluation  ModuleCode = "M08"
	ModuleSuperiorEval    ModuleCode = "M09"
	ModulePeerEvaluation  ModuleCode = "M10"
	ModuleUtenteEval      ModuleCode = "M11"
	ModuleAcknowledgement ModuleCode = "M12"
	ModuleComplaints      ModuleCode = "M13"
	ModuleHomologation    ModuleCode = "M14"
	ModuleReports         ModuleCode = "M15"
	ModuleAudit           ModuleCode = "M16"
)

var moduleCodes = [...]ModuleCode{
	ModuleDashboard, ModuleUsers, ModuleRoles, ModuleCycles,
	ModuleCompetencies, ModuleOrgUnits, ModuleObjectives, ModuleSelfEvaluation,
	ModuleSuperiorEval, ModulePeerEvaluation, ModuleUtenteEval, ModuleAcknowledgement,
	ModuleComplaints, ModuleHomologation, ModuleReports, ModuleAudit,
}

// ParseModule accepts only the fixed module codes. Use Catalog.Parse to
// check against an injected catalog instead.
func ParseModule(s string) (ModuleCode, bool) {
	for _, c := range moduleCodes {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Module describes a catalog entry.
type Module struct {
	Code        ModuleCode `json:"code"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	Route       string     `json:"route,omitempty"`
}

// Catalog is the ordered, read-only module registry.
type Catalog struct {
	modules []Module
	index   map[ModuleCode]int
}

// NewCatalog builds a catalog preserving the given order. Later duplicates are ignored.
func NewCatalog(modules []Module) *Catalog {
	c := &Catalog{
		modules: make([]Module, 0, len(modules)),
		index:   make(map[ModuleCode]int, len(modules)),
	}
	for _, m := range modules {
		if _, dup := c.index[m.Code]; dup || m.Code == "" {
			continue
		}
		c.index[m.Code] = len(c.modules)
		c.modules = append(c.modules, m)
	}
	return c
}

// DefaultCatalog returns the SGAD module registry.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Module{
		{Code: ModuleDashboard, Label: "Painel", Description: "Resumo do ciclo e indicadores", Route: "/dashboard"},
		{Code: ModuleUsers, Label: "Utilizadores", Description: "Gestão de utilizadores e perfis atribuídos", Route: "/utilizadores"},
		{Code: ModuleRoles, Label: "Perfis e Permissões", Description: "Consulta da matriz de permissões", Route: "/perfis"},
		{Code: ModuleCycles, Label: "Ciclos de Avaliação", Description: "Abertura, acompanhamento e fecho de ciclos", Route: "/ciclos"},
		{Code: ModuleCompetencies, Label: "Competências", Description: "Catálogo de competências transversais e técnicas", Route: "/competencias"},
		{Code: ModuleOrgUnits, Label: "Unidades Orgânicas", Description: "Estrutura orgânica e equipas", Route: "/unidades"},
		{Code: ModuleObjectives, Label: "Objetivos", Description: "Objetivos individuais e de equipa", Route: "/objetivos"},
		{Code: ModuleSelfEvaluation, Label: "Autoavaliação", Description: "Autoavaliação do avaliado", Route: "/avaliacoes/auto"},
		{Code: ModuleSuperiorEval, Label: "Avaliação pelo Superior", Description: "Avaliação efetuada pelo avaliador", Route: "/avaliacoes/superior"},
		{Code: ModulePeerEvaluation, Label: "Avaliação por Pares", Description: "Avaliação entre colegas", Route: "/avaliacoes/pares"},
		{Code: ModuleUtenteEval, Label: "Avaliação por Utentes", Description: "Avaliação por utentes internos e externos", Route: "/avaliacoes/utentes"},
		{Code: ModuleAcknowledgement, Label: "Tomada de Conhecimento", Description: "Confirmação de leitura da avaliação", Route: "/conhecimento"},
		{Code: ModuleComplaints, Label: "Reclamações e Recursos", Description: "Reclamações e recursos sobre avaliações", Route: "/reclamacoes"},
		{Code: ModuleHomologation, Label: "Homologação", Description: "Homologação dos resultados do ciclo", Route: "/homologacao"},
		{Code: ModuleReports, Label: "Relatórios", Description: "Fichas e relatórios oficiais", Route: "/relatorios"},
		{Code: ModuleAudit, Label: "Auditoria", Description: "Registo de operações", Route: "/auditoria"},
	})
}

// All returns the modules in catalog order. The slice is a copy.
func (c *Catalog) All() []Module {
	out := make([]Module, len(c.modules))
	copy(out, c.modules)
	return out
}

func (c *Catalog) Lookup(code ModuleCode) (Module, bool) {
	i, ok := c.index[code]
	if !ok {
		return Module{}, false
	}
	return c.modules[i], true
}

// Parse resolves an untyped module code; unknown codes report false.
func (c *Catalog) Parse(s string) (ModuleCode, bool) {
	code := ModuleCode(s)
	if _, ok := c.index[code]; !ok {
		return "", false
	}
	return code, true
}

func (c *Catalog) Len() int {
	return len(c.modules)
}
