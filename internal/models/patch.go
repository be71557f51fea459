package models

// ProblemPatch carries the owner-editable fields of a problem statement. A nil
// field is left untouched.
type ProblemPatch struct {
	Title           *string     `json:"title,omitempty"`
	Description     *string     `json:"description,omitempty"`
	Track           *Track      `json:"track,omitempty"`
	Category        *string     `json:"category,omitempty"`
	Industry        *string     `json:"industry,omitempty"`
	ExpectedOutcome *string     `json:"expectedOutcome,omitempty"`
	TechStack       *[]string   `json:"techStack,omitempty"`
	Difficulty      *Difficulty `json:"difficulty,omitempty"`
	Datasets        *string     `json:"datasets,omitempty"`
	APILinks        *string     `json:"apiLinks,omitempty"`
	ReferenceLinks  *[]string   `json:"referenceLinks,omitempty"`
	NDARequired     *bool       `json:"ndaRequired,omitempty"`
	MentorsProvided *bool       `json:"mentorsProvided,omitempty"`
	ContactPerson   *string     `json:"contactPerson,omitempty"`
	ContactEmail    *string     `json:"contactEmail,omitempty"`
}

// Apply returns a copy of p with the patch applied.
func (pp ProblemPatch) Apply(p ProblemStatement) ProblemStatement {
	if pp.Title != nil {
		p.Title = *pp.Title
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Track != nil {
		p.Track = *pp.Track
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Industry != nil {
		p.Industry = *pp.Industry
	}
	if pp.ExpectedOutcome != nil {
		p.ExpectedOutcome = *pp.ExpectedOutcome
	}
	if pp.TechStack != nil {
		p.TechStack = *pp.TechStack
	}
	if pp.Difficulty != nil {
		p.Difficulty = *pp.Difficulty
	}
	if pp.Datasets != nil {
		p.Datasets = *pp.Datasets
	}
	if pp.APILinks != nil {
		p.APILinks = *pp.APILinks
	}
	if pp.ReferenceLinks != nil {
		p.ReferenceLinks = *pp.ReferenceLinks
	}
	if pp.NDARequired != nil {
		p.NDARequired = *pp.NDARequired
	}
	if pp.MentorsProvided != nil {
		p.MentorsProvided = *pp.MentorsProvided
	}
	if pp.ContactPerson != nil {
		p.ContactPerson = *pp.ContactPerson
	}
	if pp.ContactEmail != nil {
		p.ContactEmail = *pp.ContactEmail
	}
	return p
}

// OrganizationPatch carries the owner-editable organization profile fields.
type OrganizationPatch struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	Website       *string `json:"website,omitempty"`
	Industry      *string `json:"industry,omitempty"`
	ContactPerson *string `json:"contactPerson,omitempty"`
	ContactEmail  *string `json:"contactEmail,omitempty"`
	Logo          *string `json:"logo,omitempty"`
}

// Apply returns a copy of o with the patch applied.
func (op OrganizationPatch) Apply(o Organization) Organization {
	if op.Name != nil {
		o.Name = *op.Name
	}
	if op.Description != nil {
		o.Description = *op.Description
	}
	if op.Website != nil {
		o.Website = *op.Website
	}
	if op.Industry != nil {
		o.Industry = *op.Industry
	}
	if op.ContactPerson != nil {
		o.ContactPerson = *op.ContactPerson
	}
	if op.ContactEmail != nil {
		o.ContactEmail = *op.ContactEmail
	}
	if op.Logo != nil {
		o.Logo = *op.Logo
	}
	return o
}
