package domain

// Context is the job/user data available to a wizard session. Known fields
// are typed; anything utility-specific lives in the Extras bags.
type Context struct {
	Job  *Job  `yaml:"job,omitempty" json:"job,omitempty"`
	User *User `yaml:"user,omitempty" json:"user,omitempty"`
	// TimesheetHours is the crew's total from the timesheet, when known.
	TimesheetHours *float64 `yaml:"timesheet_hours,omitempty" json:"timesheetHours,omitempty"`
}

// Job carries the fields of the job being closed out.
type Job struct {
	ID                 string         `yaml:"id" json:"id"`
	PMNumber           string         `yaml:"pm_number,omitempty" json:"pmNumber,omitempty"`
	NotificationNumber string         `yaml:"notification_number,omitempty" json:"notificationNumber,omitempty"`
	WONumber           string         `yaml:"wo_number,omitempty" json:"woNumber,omitempty"`
	Division           string         `yaml:"division,omitempty" json:"division,omitempty"`
	Address            string         `yaml:"address,omitempty" json:"address,omitempty"`
	City               string         `yaml:"city,omitempty" json:"city,omitempty"`
	Description        string         `yaml:"description,omitempty" json:"description,omitempty"`
	ECTags             []ECTag        `yaml:"ec_tags,omitempty" json:"ecTags,omitempty"`
	PreFieldLabels     []string       `yaml:"pre_field_labels,omitempty" json:"preFieldLabels,omitempty"`
	Dependencies       []string       `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Extras             map[string]any `yaml:"extras,omitempty" json:"extras,omitempty"`
}

// ECTag is a utility work-order tag attached to a job.
type ECTag struct {
	Number   string `yaml:"number" json:"number"`
	ItemType string `yaml:"item_type,omitempty" json:"itemType,omitempty"`
}

// Identifiers returns the non-empty job reference numbers keyed by their
// submission names.
func (j *Job) Identifiers() map[string]string {
	ids := make(map[string]string)
	if j == nil {
		return ids
	}
	add := func(k, v string) {
		if v != "" {
			ids[k] = v
		}
	}
	add("pmNumber", j.PMNumber)
	add("notificationNumber", j.NotificationNumber)
	add("woNumber", j.WONumber)
	add("division", j.Division)
	if len(j.ECTags) > 0 {
		add("ecTag", j.ECTags[0].Number)
	}
	return ids
}

// User is the person completing the package.
type User struct {
	LanID  string         `yaml:"lan_id" json:"lanId"`
	Name   string         `yaml:"name,omitempty" json:"name,omitempty"`
	Email  string         `yaml:"email,omitempty" json:"email,omitempty"`
	Crew   string         `yaml:"crew,omitempty" json:"crew,omitempty"`
	Extras map[string]any `yaml:"extras,omitempty" json:"extras,omitempty"`
}
