package matrix_test

import (
	"testing"

	"github.com/katalvlaran/popflow/matrix"
	"github.com/stretchr/testify/require"
)

func TestValidators(t *testing.T) {
	sq := MustDense(t, 2, 2)
	rect := MustDense(t, 2, 3)

	require.ErrorIs(t, matrix.ValidateNotNil(nil), matrix.ErrNilMatrix)
	require.NoError(t, matrix.ValidateNotNil(sq))

	require.NoError(t, matrix.ValidateSameShape(sq, sq))
	require.ErrorIs(t, matrix.ValidateSameShape(sq, rect), matrix.ErrDimensionMismatch)

	require.NoError(t, matrix.ValidateSquare(sq))
	require.ErrorIs(t, matrix.ValidateSquare(rect), matrix.ErrNonSquare)

	require.NoError(t, matrix.ValidateVecLen([]float64{1, 2}, 2))
	require.ErrorIs(t, matrix.ValidateVecLen([]float64{1}, 2), matrix.ErrDimensionMismatch)
	require.ErrorIs(t, matrix.ValidateVecLen(nil, 2), matrix.ErrNilMatrix)

	require.NoError(t, matrix.ValidateTransition(sq))
	require.ErrorIs(t, matrix.ValidateTransition(rect), matrix.ErrNonSquare)
	var typedNil *matrix.Dense
	require.ErrorIs(t, matrix.ValidateTransition(typedNil), matrix.ErrNilMatrix)
}
