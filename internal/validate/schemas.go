package validate

import (
	"github.com/garnizeh/problemhub/internal/models"
)

const (
	emailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`
	urlPattern   = `^https?://[^\s/$.?#][^\s]*$`
	datePattern  = `^\d{4}-\d{2}-\d{2}([T ].*)?$`
)

func str(lo, hi int) map[string]any {
	d := map[string]any{"type": "string"}
	if lo > 0 {
		d["minLength"] = lo
	}
	if hi > 0 {
		d["maxLength"] = hi
	}
	return d
}

func enumOf[T ~string](vals []T) map[string]any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return map[string]any{"type": "string", "enum": out}
}

func email() map[string]any {
	return map[string]any{"type": "string", "pattern": emailPattern}
}

func link() map[string]any {
	return map[string]any{"type": "string", "pattern": urlPattern}
}

func linkOrEmpty() map[string]any {
	return map[string]any{"type": "string", "pattern": `^$|` + urlPattern}
}

func boolean() map[string]any {
	return map[string]any{"type": "boolean"}
}

func integer(lo, hi int) map[string]any {
	d := map[string]any{"type": "integer", "minimum": lo}
	if hi > 0 {
		d["maximum"] = hi
	}
	return d
}

func arrayOf(items map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": items}
}

func allCategories() []string {
	out := append([]string{}, models.SoftwareCategories...)
	return append(out, models.HardwareCategories...)
}

// trackCategories ties category to the category list of the submitted track.
func trackCategories() map[string]any {
	rules := make([]any, 0, len(models.Tracks))
	for _, t := range models.Tracks {
		rules = append(rules, map[string]any{
			"if": map[string]any{
				"required":   []any{"track"},
				"properties": map[string]any{"track": map[string]any{"const": string(t)}},
			},
			"then": map[string]any{
				"properties": map[string]any{"category": enumOf(models.CategoriesFor(t))},
			},
		})
	}
	return map[string]any{"allOf": rules}
}

func problemProps(required bool) []prop {
	return []prop{
		{name: "title", def: str(5, 200), required: required, message: "Title must be between 5 and 200 characters"},
		{name: "description", def: str(50, 5000), required: required, message: "Description must be between 50 and 5000 characters"},
		{name: "track", def: enumOf(models.Tracks), required: required, message: "Invalid track"},
		{name: "category", def: enumOf(allCategories()), required: required, message: "Invalid category"},
		{name: "industry", def: enumOf(models.Industries), required: required, message: "Invalid industry"},
		{name: "expectedOutcome", def: str(20, 2000), required: required, message: "Expected outcome must be between 20 and 2000 characters"},
		{name: "techStack", def: arrayOf(map[string]any{"type": "string"})},
		{name: "difficulty", def: enumOf(models.Difficulties), required: required, message: "Invalid difficulty level"},
		{name: "datasets", def: str(0, 1000)},
		{name: "apiLinks", def: str(0, 1000)},
		{name: "referenceLinks", def: arrayOf(link()), itemMessage: "Invalid URL"},
		{name: "ndaRequired", def: boolean()},
		{name: "mentorsProvided", def: boolean()},
		{name: "contactPerson", def: str(2, 100), required: required},
		{name: "contactEmail", def: email(), required: required, message: "Invalid contact email"},
	}
}

func paginationProps() []prop {
	return []prop{
		{name: "page", def: integer(1, MaxPage), message: "Page must be between 1 and 1000000"},
		{name: "limit", def: integer(1, 100), message: "Limit must be between 1 and 100"},
		{name: "sortBy", def: str(0, 50)},
		{name: "sortOrder", def: enumOf([]string{"asc", "desc"}), message: "Sort order must be asc or desc"},
	}
}

var (
	Register = compile("register", []prop{
		{name: "email", def: email(), required: true, message: "Invalid email address"},
		{name: "password", def: map[string]any{
			"type":      "string",
			"minLength": 8,
			"allOf": []any{
				map[string]any{"pattern": "[A-Z]"},
				map[string]any{"pattern": "[a-z]"},
				map[string]any{"pattern": "[0-9]"},
			},
		}, required: true, message: "Password must be at least 8 characters and contain an uppercase letter, a lowercase letter and a number"},
		{name: "name", def: str(2, 100), message: "Name must be between 2 and 100 characters"},
		{name: "organizationName", def: str(2, 200), required: true, message: "Organization name must be between 2 and 200 characters"},
		{name: "industry", def: enumOf(models.Industries), required: true, message: "Invalid industry"},
		{name: "website", def: linkOrEmpty(), message: "Invalid website URL"},
		{name: "description", def: str(0, 2000), message: "Description cannot exceed 2000 characters"},
		{name: "contactPerson", def: str(2, 100), required: true, message: "Contact person name must be between 2 and 100 characters"},
		{name: "contactEmail", def: email(), required: true, message: "Invalid contact email"},
	}, nil)

	Login = compile("login", []prop{
		{name: "email", def: email(), required: true, message: "Invalid email address"},
		{name: "password", def: str(1, 0), required: true, message: "Password is required"},
	}, nil)

	Refresh = compile("refresh", []prop{
		{name: "refreshToken", def: str(1, 0), required: true, message: "Refresh token is required"},
	}, nil)

	CreateProblem = compile("createProblem", problemProps(true), trackCategories())

	UpdateProblem = compile("updateProblem", problemProps(false), trackCategories())

	ReviewProblem = compile("reviewProblem", []prop{
		{name: "status", def: enumOf([]models.ProblemStatus{models.StatusApproved, models.StatusRejected}), required: true, message: "Invalid status"},
		{name: "adminNotes", def: str(0, 1000), message: "Admin notes cannot exceed 1000 characters"},
	}, nil)

	FeatureProblem = compile("featureProblem", []prop{
		{name: "featured", def: boolean(), required: true, message: "Featured must be a boolean"},
	}, nil)

	UpdateOrganization = compile("updateOrganization", []prop{
		{name: "name", def: str(2, 200), message: "Name must be between 2 and 200 characters"},
		{name: "description", def: str(0, 2000), message: "Description cannot exceed 2000 characters"},
		{name: "website", def: linkOrEmpty(), message: "Invalid website URL"},
		{name: "industry", def: enumOf(models.Industries), message: "Invalid industry"},
		{name: "contactPerson", def: str(2, 100)},
		{name: "contactEmail", def: email(), message: "Invalid contact email"},
		{name: "logo", def: str(0, 0)},
	}, nil)

	VerifyOrganization = compile("verifyOrganization", []prop{
		{name: "verified", def: boolean(), required: true, message: "Verified must be a boolean"},
	}, nil)

	ProblemQuery = compile("problemQuery", append(paginationProps(),
		prop{name: "search", def: str(0, 200)},
		prop{name: "track", def: enumOf(models.Tracks), message: "Invalid track"},
		prop{name: "category", def: str(0, 0)},
		prop{name: "difficulty", def: enumOf(models.Difficulties), message: "Invalid difficulty level"},
		prop{name: "status", def: enumOf(models.ProblemStatuses), message: "Invalid status"},
		prop{name: "featured", def: boolean(), message: "Featured must be true or false"},
		prop{name: "organizationId", def: str(0, 0)},
	), nil)

	OrganizationQuery = compile("organizationQuery", append(paginationProps(),
		prop{name: "search", def: str(0, 200)},
		prop{name: "verified", def: boolean(), message: "Verified must be true or false"},
		prop{name: "industry", def: enumOf(models.Industries), message: "Invalid industry"},
	), nil)

	AuditQuery = compile("auditQuery", append(paginationProps(),
		prop{name: "action", def: enumOf(models.AuditActions), message: "Invalid action"},
		prop{name: "targetType", def: enumOf(models.TargetTypes), message: "Invalid target type"},
		prop{name: "adminId", def: str(0, 0)},
		prop{name: "targetId", def: str(0, 0)},
		prop{name: "startDate", def: map[string]any{"type": "string", "pattern": datePattern}, message: "Invalid date"},
		prop{name: "endDate", def: map[string]any{"type": "string", "pattern": datePattern}, message: "Invalid date"},
	), nil)

	RecentQuery = compile("recentQuery", []prop{
		{name: "limit", def: integer(1, 50), message: "Limit must be between 1 and 50"},
	}, nil)
)
