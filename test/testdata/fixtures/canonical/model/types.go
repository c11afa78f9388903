package model

import "time"

type TestEmbedded struct {
	ID        string    `json:"id" dto:""`
	CreatedAt time.Time `json:"created_at" dto:"Created"`
}

type TestEmbeddedGeneric[T comparable] struct {
	ID T `json:"id" dto:""`
}

//dtogen:transfer namespace=../api
type TestWidget struct {
	TestEmbedded `json:",inline" dto:"-"`
	WodgetID     string `json:"wodget_id" dto:""`
	Name         string `json:"name" dto:""`
	Category     int    `json:"age" dto:"Age"`
	note         string
}

//dtogen:transfer namespace=../api
//dtogen:conversion behavior=NoGeneration
type TestWodget struct {
	Name    string        `json:"name" dto:""`
	Widgets []*TestWidget `json:"widgets" dtochild:"type=[]*api.TestWidgetDto"`
}

//dtogen:conversion name=WadgetMapper behavior=OnlyToFunctions
type TestWadget struct {
	Ref string `json:"ref" dto:""`
	Key string `json:"key" dto:"name=Code"`
	// DepField Deprecated this field will be removed in a subsequent release
	DepField string            `json:"dep_field"`
	Tags     map[string]string `json:"tags" dto:""`
	Seen     []time.Time       `json:"seen" dto:""`
	Wodgets  []TestWodget      `json:"wodgets" dto:""`
	Owner    *TestWidget       `json:"owner" dto:""`
	secret   string            `dto:""`
}

// TestGadget carries a child property without opting out of conversions.
type TestGadget struct {
	Name    string       `dto:""`
	Wodgets []TestWodget `dtochild:"type=[]api.TestWodgetDto"`
}

// TestDeprecatedStruct
// Deprecated
type TestDeprecatedStruct struct {
	TestEmbedded
}

type TestStatus int

// TestOrder moves its transfer type to api while the holder stays here, and the
// transfer type needs TestStatus from this package.
//
//dtogen:transfer namespace=../api
type TestOrder struct {
	State TestStatus `dto:""`
}
