package features

// Categories seen per categorical field when the census model was trained,
// in the order the encoder emitted their indicator columns.
var Categories = map[string][]string{
	FieldWorkclass: {
		"Federal-gov", "Local-gov", "Private", "Self-emp-inc", "Self-emp-not-inc",
		"State-gov", "Without-pay",
	},
	FieldEducation: {
		"10th", "11th", "12th", "1st-4th", "5th-6th", "7th-8th", "9th", "Assoc-acdm",
		"Assoc-voc", "Bachelors", "Doctorate", "HS-grad", "Masters", "Preschool",
		"Prof-school", "Some-college",
	},
	FieldMaritalStatus: {
		"Divorced", "Married-AF-spouse", "Married-civ-spouse", "Married-spouse-absent",
		"Never-married", "Separated", "Widowed",
	},
	FieldOccupation: {
		"Adm-clerical", "Armed-Forces", "Craft-repair", "Exec-managerial", "Farming-fishing",
		"Handlers-cleaners", "Machine-op-inspct", "Other-service", "Priv-house-serv",
		"Prof-specialty", "Protective-serv", "Sales", "Tech-support", "Transport-moving",
	},
	FieldRelationship: {
		"Husband", "Not-in-family", "Other-relative", "Own-child", "Unmarried", "Wife",
	},
	FieldRace: {
		"Amer-Indian-Eskimo", "Asian-Pac-Islander", "Black", "Other", "White",
	},
	FieldSex: {
		"Female", "Male",
	},
	FieldNativeCountry: {
		"Cambodia", "Canada", "China", "Columbia", "Cuba", "Dominican-Republic", "Ecuador",
		"El-Salvador", "England", "France", "Germany", "Greece", "Guatemala", "Haiti",
		"Holand-Netherlands", "Honduras", "Hong", "Hungary", "India", "Iran", "Ireland",
		"Italy", "Jamaica", "Japan", "Laos", "Mexico", "Nicaragua",
		"Outlying-US(Guam-USVI-etc)", "Peru", "Philippines", "Poland", "Portugal",
		"Puerto-Rico", "Scotland", "South", "Taiwan", "Thailand", "Trinadad&Tobago",
		"United-States", "Vietnam", "Yugoslavia",
	},
}
