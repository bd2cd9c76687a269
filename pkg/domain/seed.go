package domain

// Seed is the reference data loaded at deploy time: roles with their
// permissions, workshops, contact methods and the initial employees.
type Seed struct {
	Roles          []SeedRole      `yaml:"roles"`
	Workshops      []Workshop      `yaml:"workshops"`
	ContactMethods []ContactMethod `yaml:"contact_methods"`
	Operators      []SeedOperator  `yaml:"operators"`
}

// SeedRole declares a role and the permission slugs it grants.
type SeedRole struct {
	Slug        string   `yaml:"slug"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

// SeedOperator declares an employee. Role and Workshop are slugs; an empty
// Workshop means the employee is not bound to one.
type SeedOperator struct {
	ExternalID int64  `yaml:"external_id"`
	FullName   string `yaml:"full_name"`
	Phone      string `yaml:"phone"`
	Role       string `yaml:"role"`
	Workshop   string `yaml:"workshop"`
}
