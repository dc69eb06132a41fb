package problem

// seeds holds the offline problem set for each primitive. Every record is
// served verbatim when the practice API cannot be reached.
var seeds = map[Primitive][]Problem{
	PrimitiveDirection: {
		{
			Text:           "Water (H₂O) has a bent molecular geometry. The H-O-H bond angle is approximately what value in degrees?",
			CorrectAnswer:  "104.5",
			Hint1:          "It's less than the tetrahedral angle (109.5°) because of lone pair repulsion.",
			Hint2:          "The answer is between 100° and 110°.",
			WorkedSolution: "Water has 2 bonding pairs and 2 lone pairs around oxygen. Lone pairs repel more strongly than bonding pairs, compressing the H-O-H angle from 109.5° to about 104.5°.",
		},
		{
			Text:           "Methane (CH₄) has a tetrahedral geometry. What is the H-C-H bond angle?",
			CorrectAnswer:  "109.5",
			Hint1:          "In a perfect tetrahedron, all angles are equal.",
			Hint2:          "Think about the angle that maximizes distance between 4 equivalent positions.",
			WorkedSolution: "With 4 bonding pairs and no lone pairs, the electron geometry is tetrahedral. The bond angle is arccos(-1/3) ≈ 109.5°.",
		},
		{
			Text:           "Carbon dioxide (CO₂) is a linear molecule. What is the O-C-O bond angle?",
			CorrectAnswer:  "180",
			Hint1:          "Linear means the atoms are in a straight line.",
			Hint2:          "What's the angle of a straight line?",
			WorkedSolution: "CO₂ has 2 bonding domains (double bonds) and no lone pairs on carbon. Maximum separation = straight line = 180°.",
		},
	},
	PrimitiveCollection: {
		{
			Text:           "How many moles of water are in 36 g of H₂O? (molar mass 18 g/mol)",
			CorrectAnswer:  "2",
			Hint1:          "Moles = mass / molar mass.",
			Hint2:          "36 divided by 18.",
			WorkedSolution: "n = m / M = 36 g / 18 g/mol = 2 mol.",
		},
		{
			Text:           "How many electrons can the second electron shell (n = 2) hold?",
			CorrectAnswer:  "8",
			Hint1:          "Shell capacity is 2n².",
			Hint2:          "Substitute n = 2 into 2n².",
			WorkedSolution: "The n = 2 shell has one 2s and three 2p orbitals, each holding 2 electrons: 2 × 2² = 8.",
		},
	},
	PrimitiveArrangement: {
		{
			Text:           "A molecule has 2 stereocenters and no internal symmetry. What is the maximum number of stereoisomers?",
			CorrectAnswer:  "4",
			Hint1:          "Each stereocenter can be R or S.",
			Hint2:          "The maximum is 2 raised to the number of stereocenters.",
			WorkedSolution: "Each stereocenter has 2 configurations, so the maximum is 2² = 4 stereoisomers.",
		},
		{
			Text:           "How many atoms are in one face-centered cubic (FCC) unit cell?",
			CorrectAnswer:  "4",
			Hint1:          "Corner atoms count 1/8, face atoms count 1/2.",
			Hint2:          "There are 8 corners and 6 faces.",
			WorkedSolution: "8 corners × 1/8 = 1 atom, 6 faces × 1/2 = 3 atoms. Total = 4 atoms per unit cell.",
		},
	},
	PrimitiveProximity: {
		{
			Text:           "Which intermolecular force is strongest between molecules of water: London dispersion, dipole-dipole, or hydrogen bonding?",
			CorrectAnswer:  "hydrogen bonding",
			Hint1:          "Water has O-H bonds.",
			Hint2:          "H bonded to N, O, or F enables a special strong interaction.",
			WorkedSolution: "Water's O-H hydrogens are attracted to lone pairs on neighbouring oxygens. These hydrogen bonds dominate over dipole-dipole and dispersion forces.",
		},
		{
			Text:           "On a potential energy curve for two atoms, the bond length corresponds to the distance where the energy is at its ____ (minimum or maximum)?",
			CorrectAnswer:  "minimum",
			Hint1:          "Atoms settle where the system is most stable.",
			Hint2:          "Stable means lowest energy.",
			WorkedSolution: "Attraction lowers the energy as atoms approach until repulsion takes over. The bottom of the well is the equilibrium bond length.",
		},
	},
	PrimitiveSameness: {
		{
			Text:           "How many resonance structures does the carbonate ion (CO₃²⁻) have?",
			CorrectAnswer:  "3",
			Hint1:          "The double bond can sit on any of the oxygens.",
			Hint2:          "Count the equivalent oxygen atoms.",
			WorkedSolution: "The C=O double bond can be drawn to each of the 3 equivalent oxygens, giving 3 resonance structures.",
		},
		{
			Text:           "In the reaction 2H₂ + O₂ → 2H₂O, how many oxygen atoms appear on the product side?",
			CorrectAnswer:  "2",
			Hint1:          "Atoms are conserved in a chemical reaction.",
			Hint2:          "Each H₂O has one oxygen atom.",
			WorkedSolution: "2 H₂O molecules × 1 O each = 2 oxygen atoms, matching the 2 oxygen atoms in O₂.",
		},
	},
	PrimitiveChange: {
		{
			Text:           "In Zn + Cu²⁺ → Zn²⁺ + Cu, how many electrons are transferred per zinc atom?",
			CorrectAnswer:  "2",
			Hint1:          "Compare the charge on zinc before and after.",
			Hint2:          "Zn goes from 0 to +2.",
			WorkedSolution: "Zinc is oxidized from 0 to +2, losing 2 electrons that copper(II) gains.",
		},
		{
			Text:           "What is the name of the phase transition from solid directly to gas?",
			CorrectAnswer:  "sublimation",
			Hint1:          "Dry ice does this at room temperature.",
			Hint2:          "The word starts with 'sub'.",
			WorkedSolution: "Skipping the liquid phase, a solid turning into a gas is sublimation.",
		},
	},
	PrimitiveRate: {
		{
			Text:           "A radioactive isotope has a half-life of 5 years. What fraction remains after 10 years?",
			CorrectAnswer:  "0.25",
			Hint1:          "10 years is 2 half-lives.",
			Hint2:          "Halve, then halve again.",
			WorkedSolution: "After 2 half-lives the remaining fraction is (1/2)² = 0.25.",
		},
		{
			Text:           "For a reaction that is first order in A, doubling [A] multiplies the rate by what factor?",
			CorrectAnswer:  "2",
			Hint1:          "rate = k[A]¹",
			Hint2:          "The rate scales linearly with [A].",
			WorkedSolution: "With rate = k[A], doubling [A] doubles the rate: a factor of 2.",
		},
	},
	PrimitiveAccumulation: {
		{
			Text:           "How much heat (in J) is needed to warm 10 g of water by 5 °C? (c = 4.18 J/g·°C)",
			CorrectAnswer:  "209",
			Hint1:          "q = m·c·ΔT",
			Hint2:          "Multiply 10 × 4.18 × 5.",
			WorkedSolution: "q = 10 g × 4.18 J/g·°C × 5 °C = 209 J.",
		},
		{
			Text:           "A two-step synthesis has yields of 50% and 80%. What is the overall percent yield?",
			CorrectAnswer:  "40",
			Hint1:          "Overall yield is the product of the step yields.",
			Hint2:          "0.5 × 0.8",
			WorkedSolution: "Overall yield = 0.50 × 0.80 = 0.40, i.e. 40%.",
		},
	},
	PrimitiveSpread: {
		{
			Text:           "When ice melts, does the entropy of the water increase or decrease?",
			CorrectAnswer:  "increase",
			Hint1:          "Liquids have more accessible arrangements than solids.",
			Hint2:          "More disorder means higher entropy.",
			WorkedSolution: "Melting frees molecules from fixed lattice positions, increasing the number of microstates, so entropy increases.",
		},
		{
			Text:           "Raising the temperature shifts the Boltzmann distribution so that a larger fraction of molecules has energy above the activation energy. Does the fraction increase or decrease?",
			CorrectAnswer:  "increase",
			Hint1:          "Higher temperature means higher average kinetic energy.",
			Hint2:          "The distribution flattens and its tail grows.",
			WorkedSolution: "At higher T the distribution broadens toward higher energies, so more molecules exceed Eₐ and the fraction increases.",
		},
	},
}

// Seeds returns the offline problem set for p. Unknown primitives get the
// DIRECTION set.
func Seeds(p Primitive) []Problem {
	set, ok := seeds[p]
	if !ok {
		set = seeds[PrimitiveDirection]
	}
	out := make([]Problem, len(set))
	for i, prob := range set {
		prob.Origin = OriginSeed
		out[i] = prob
	}
	return out
}
