package bigmath

import (
	"math/big"
	"testing"
)

func bi(s int64) *big.Int { return big.NewInt(s) }

func TestModInverse(t *testing.T) {
	inv, ok := ModInverse(bi(3), bi(11))
	if !ok || inv.Cmp(bi(4)) != 0 {
		t.Fatalf("ModInverse(3, 11) = %v, %v; want 4, true", inv, ok)
	}
}

func TestModInverseNoInverse(t *testing.T) {
	if _, ok := ModInverse(bi(4), bi(8)); ok {
		t.Fatalf("ModInverse(4, 8) should have no inverse (gcd=4)")
	}
}

func TestModInverseRoundTrip(t *testing.T) {
	cases := []struct{ a, m int64 }{
		{3, 11}, {7, 20}, {17, 3120}, {65537, 3233},
	}
	for _, c := range cases {
		a, m := bi(c.a), bi(c.m)
		inv, ok := ModInverse(a, m)
		if !ok {
			t.Fatalf("ModInverse(%d, %d): no inverse found", c.a, c.m)
		}
		got := new(big.Int).Mod(new(big.Int).Mul(a, inv), m)
		if got.Cmp(bi(1)) != 0 {
			t.Fatalf("(%d * modinv) mod %d = %v, want 1", c.a, c.m, got)
		}
	}
}

func TestIsProbablePrimeComposite(t *testing.T) {
	for _, n := range []int64{4, 9, 15, 25} {
		if IsProbablePrime(bi(n), 128) {
			t.Errorf("IsProbablePrime(%d) = true, want false", n)
		}
	}
}

func TestIsProbablePrimeActualPrime(t *testing.T) {
	for _, n := range []int64{5, 7, 11, 13, 17} {
		if !IsProbablePrime(bi(n), 128) {
			t.Errorf("IsProbablePrime(%d) = false, want true", n)
		}
	}
}

func TestIsProbablePrimeAgreesWithTrialDivision(t *testing.T) {
	for _, bits := range []int{4, 8, 16, 32} {
		max := int64(1) << uint(bits)
		for n := int64(2); n < max && n < 5000; n++ {
			want := trialDivisionPrime(n)
			got := IsProbablePrime(bi(n), 128)
			if got != want {
				t.Fatalf("bits=%d n=%d: IsProbablePrime=%v trialDivision=%v", bits, n, got, want)
			}
		}
	}
}

func trialDivisionPrime(n int64) bool {
	if n < 2 {
		return false
	}
	for i := int64(2); i*i <= n; i++ {
		if n%i == 0 {
			return false
		}
	}
	return true
}
