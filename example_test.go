package uuid47

import "fmt"

func Example() {
	key, err := ParseKey("0123456789abcdeffedcba9876543210")
	if err != nil {
		panic(err)
	}

	// The v7 form stays in the database and in logs
	internal := Must(Parse("018f2d9f-9a2a-7def-8c3f-7b1a2c4d5e6f"))

	// The facade is what API clients see
	facade, err := Encode(internal, key)
	if err != nil {
		panic(err)
	}

	// Inbound facades map back to the stored form
	recovered, err := Decode(facade, key)
	if err != nil {
		panic(err)
	}

	fmt.Printf("internal:  %s\n", internal)
	fmt.Printf("facade:    %s\n", facade)
	fmt.Printf("recovered: %s\n", recovered)
	// Output:
	// internal:  018f2d9f-9a2a-7def-8c3f-7b1a2c4d5e6f
	// facade:    2463c780-7fca-4def-8c3f-7b1a2c4d5e6f
	// recovered: 018f2d9f-9a2a-7def-8c3f-7b1a2c4d5e6f
}

func ExampleCodec() {
	key, err := ParseKey("0123456789abcdeffedcba9876543210")
	if err != nil {
		panic(err)
	}
	codec := NewCodec(key)

	facade, err := codec.EncodeString("018f2d9f-9a2a-7def-8c3f-7b1a2c4d5e6f")
	if err != nil {
		panic(err)
	}
	fmt.Println(facade)
	// Output:
	// 2463c780-7fca-4def-8c3f-7b1a2c4d5e6f
}

func ExampleDeriveKey() {
	key, err := DeriveKey([]byte("correct horse battery staple"), nil)
	if err != nil {
		panic(err)
	}
	fmt.Println(key.Hex())
	// Output:
	// b54b37a56416a7e85896c42b1964b743
}
