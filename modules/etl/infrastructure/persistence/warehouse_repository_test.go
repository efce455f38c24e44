package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nimbusbi/timefact/pkg/composables"
)

func TestTableNamesAreSchemaQualifiedAndQuoted(t *testing.T) {
	r := NewWarehouseRepository("dbo")
	require.Equal(t, `"dbo"."Fact_Imputaciones"`, r.table("Fact_Imputaciones"))
	require.Equal(t, `"dbo"."Dim_Empleado"`, r.table("Dim_Empleado"))

	defaulted := NewWarehouseRepository("")
	require.Equal(t, `"dbo"."Fact_Fichajes"`, defaulted.table("Fact_Fichajes"))
}

func TestRepositoryRequiresPoolInContext(t *testing.T) {
	r := NewWarehouseRepository("dbo")

	_, err := r.EmployeeDims(context.Background())
	require.ErrorIs(t, err, composables.ErrNoPool)

	_, err = r.ImputationKeys(context.Background())
	require.ErrorIs(t, err, composables.ErrNoPool)
}
