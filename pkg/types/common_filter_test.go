package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommonFilter_Validate(t *testing.T) {
	allowed := []string{"package_id", "period_key"}

	tests := []struct {
		name    string
		filter  *CommonFilter
		wantErr bool
	}{
		{name: "nil", filter: nil, wantErr: true},
		{name: "allowed eq", filter: &CommonFilter{Field: "package_id", Operator: CommonFilterOperatorEq, Values: []any{"p1"}}},
		{name: "unknown field", filter: &CommonFilter{Field: "1=1; drop table payment", Operator: CommonFilterOperatorEq, Values: []any{"x"}}, wantErr: true},
		{name: "unknown operator", filter: &CommonFilter{Field: "package_id", Operator: "like", Values: []any{"p%"}}, wantErr: true},
		{name: "no values", filter: &CommonFilter{Field: "package_id", Operator: CommonFilterOperatorEq}, wantErr: true},
		{name: "range needs two", filter: &CommonFilter{Field: "period_key", Operator: CommonFilterOperatorRange, Values: []any{"2024-01"}}, wantErr: true},
		{name: "range ok", filter: &CommonFilter{Field: "period_key", Operator: CommonFilterOperatorRange, Values: []any{"2024-01", "2024-06"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate(allowed)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
